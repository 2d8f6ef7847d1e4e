package harness

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/assertion"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/region"
)

// Scenario is a trace plus the checks to evaluate against it.
type Scenario struct {
	// Name uniquely identifies this scenario. Used for reports and golden
	// file names.
	Name string `yaml:"name"`

	Description string `yaml:"description,omitempty"`

	// Trace is the trace file, relative to the scenario file.
	Trace string `yaml:"trace"`

	// Mode is "trace" (default) or "dump".
	Mode string `yaml:"mode,omitempty"`

	// Format is "auto" (default), "yaml" or "proto".
	Format string `yaml:"format,omitempty"`

	Checks []Check `yaml:"checks"`

	dir string
}

// Check evaluates one assertion at one timestamp.
type Check struct {
	At      int64   `yaml:"at"`
	Assert  string  `yaml:"assert"`
	Window  string  `yaml:"window"`
	Region  [][]int `yaml:"region,omitempty,flow"`
	Below   string  `yaml:"below,omitempty"`
	State   string  `yaml:"state,omitempty"`
	Expect  string  `yaml:"expect,omitempty"`
	Message string  `yaml:"message,omitempty"`
	Match   string  `yaml:"match,omitempty"`
}

// Scenario modes and check expectations.
const (
	ModeTrace = "trace"
	ModeDump  = "dump"

	ExpectPass = "pass"
	ExpectFail = "fail"
)

// LoadScenario reads a scenario file. The trace path is resolved against
// the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.dir = filepath.Dir(path)
	return s, nil
}

// ParseScenario decodes and validates a scenario document. Relative trace
// paths resolve against the working directory.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("invalid scenario: empty document")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	if s.Mode == "" {
		s.Mode = ModeTrace
	}
	if s.Format == "" {
		s.Format = "auto"
	}
	for i := range s.Checks {
		if s.Checks[i].Expect == "" {
			s.Checks[i].Expect = ExpectPass
		}
	}
	return &s, nil
}

// TracePath returns the trace file path with the scenario directory applied.
func (s *Scenario) TracePath() string {
	if filepath.IsAbs(s.Trace) || s.dir == "" {
		return s.Trace
	}
	return filepath.Join(s.dir, s.Trace)
}

// validateScenario covers the argument rules the schema cannot express per
// assertion.
func validateScenario(s *Scenario) error {
	for i, c := range s.Checks {
		switch c.Assert {
		case assertion.NameCoversAtLeastRegion, assertion.NameCoversAtMostRegion:
			if len(c.Region) == 0 {
				return fmt.Errorf("checks[%d]: region is required for %s", i, c.Assert)
			}
		case assertion.NameIsWindowAbove:
			if c.Below == "" {
				return fmt.Errorf("checks[%d]: below is required for %s", i, c.Assert)
			}
		case assertion.NameHasActivityState:
			if c.State == "" {
				return fmt.Errorf("checks[%d]: state is required for %s", i, c.Assert)
			}
		}
		if _, err := c.region(); err != nil {
			return fmt.Errorf("checks[%d]: %w", i, err)
		}
		if _, err := assertion.ParseMatch(c.Match); err != nil {
			return fmt.Errorf("checks[%d]: %w", i, err)
		}
	}
	return nil
}

// region converts the [[l,t,r,b], ...] list into a region.
func (c Check) region() (region.Region, error) {
	rects := make([]region.Rect, 0, len(c.Region))
	for j, r := range c.Region {
		if len(r) != 4 {
			return region.Region{}, fmt.Errorf("region[%d]: want 4 values, got %d", j, len(r))
		}
		rects = append(rects, region.Rect{Left: r[0], Top: r[1], Right: r[2], Bottom: r[3]})
	}
	return region.New(rects...), nil
}
