// Package harness runs window-manager trace scenarios.
//
// # Scenario Format
//
// Scenarios are YAML files validated against an embedded CUE schema:
//
//	name: open_chrome
//	description: status bar and launcher coverage
//	trace: ../traces/openchrome.yaml
//	mode: trace
//	format: auto
//	checks:
//	  - at: 9213763541297
//	    assert: covers_at_least_region
//	    window: StatusBar
//	    region: [[0, 0, 1441, 171]]
//	    expect: fail
//	    message: Uncovered region
//
// The trace path is resolved relative to the scenario file. mode is trace
// (default) or dump; dump requires exactly one snapshot. expect is pass
// (default) or fail, and message, when set, must be a substring of the
// assertion message.
//
// # Results
//
// Run parses the trace once and evaluates every check against the entry at
// its timestamp. A check naming a missing timestamp fails without stopping
// the run. Result.Failures collects the assertion errors reported by the
// predicates, whether or not the scenario expected them.
//
// # Golden Dumps
//
// AssertGolden compares the canonical JSON dump of an entry with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
