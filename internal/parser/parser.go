// Package parser assembles raw snapshot records into sealed window
// hierarchies.
//
// Each snapshot is parsed in two passes. The first instantiates every record
// as a container, rejecting unknown kinds and duplicate ids. The second
// checks parent references for missing targets and cycles, then links
// children in record order, which preserves the recorded z-order. Any
// structural problem aborts the whole parse with a *ParseError naming the
// snapshot and record.
package parser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/snapshot"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/wm"
)

// Parser turns decoded snapshots into traces.
type Parser struct {
	logger *slog.Logger
}

// New creates a parser. A nil logger discards output.
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Parser{logger: logger}
}

var defaultParser = New(nil)

// ParseFromTrace decodes data and returns one entry per snapshot.
func ParseFromTrace(data []byte, dec snapshot.Decoder) (*wm.Trace, error) {
	return defaultParser.ParseFromTrace(data, dec)
}

// ParseFromDump decodes a single-state dump. The input must hold exactly
// one snapshot.
func ParseFromDump(data []byte, dec snapshot.Decoder) (*wm.Trace, error) {
	return defaultParser.ParseFromDump(data, dec)
}

// ParseSnapshot builds the entry for one snapshot.
func ParseSnapshot(s snapshot.Snapshot) (*wm.Entry, error) {
	return defaultParser.ParseSnapshot(s)
}

// ParseFromTrace decodes data and returns one entry per snapshot.
func (p *Parser) ParseFromTrace(data []byte, dec snapshot.Decoder) (*wm.Trace, error) {
	snaps, err := p.decode(data, dec)
	if err != nil {
		return nil, err
	}
	return p.ParseSnapshots(snaps)
}

// ParseFromDump decodes a single-state dump. Zero or several snapshots fail
// with ReasonSnapshotCount.
func (p *Parser) ParseFromDump(data []byte, dec snapshot.Decoder) (*wm.Trace, error) {
	snaps, err := p.decode(data, dec)
	if err != nil {
		return nil, err
	}
	if len(snaps) != 1 {
		return nil, &ParseError{
			Reason:   ReasonSnapshotCount,
			Snapshot: -1,
			RecordID: -1,
			Err:      fmt.Errorf("dump holds %d snapshots, want exactly 1", len(snaps)),
		}
	}
	return p.ParseSnapshots(snaps)
}

// ParseSnapshots builds a trace from already decoded snapshots.
func (p *Parser) ParseSnapshots(snaps []snapshot.Snapshot) (*wm.Trace, error) {
	entries := make([]*wm.Entry, 0, len(snaps))
	for i, s := range snaps {
		if i > 0 && s.Timestamp <= snaps[i-1].Timestamp {
			return nil, &ParseError{
				Reason:    ReasonTimestampOrder,
				Snapshot:  i,
				Timestamp: s.Timestamp,
				RecordID:  -1,
				Err:       fmt.Errorf("timestamp %d does not follow %d", s.Timestamp, snaps[i-1].Timestamp),
			}
		}
		e, err := p.parseSnapshot(i, s)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	trace, err := wm.NewTrace(entries)
	if err != nil {
		return nil, &ParseError{Reason: ReasonTimestampOrder, Snapshot: -1, RecordID: -1, Err: err}
	}
	p.logger.Debug("parsed trace", "entries", trace.Len())
	return trace, nil
}

// ParseSnapshot builds the entry for one snapshot.
func (p *Parser) ParseSnapshot(s snapshot.Snapshot) (*wm.Entry, error) {
	return p.parseSnapshot(0, s)
}

func (p *Parser) decode(data []byte, dec snapshot.Decoder) ([]snapshot.Snapshot, error) {
	snaps, err := dec.Decode(data)
	if err != nil {
		return nil, &ParseError{Reason: ReasonMalformed, Snapshot: -1, RecordID: -1, Err: err}
	}
	p.logger.Debug("decoded snapshots", "count", len(snaps), "bytes", len(data))
	return snaps, nil
}

type visitState int

const (
	unvisited visitState = iota
	visiting
	done
)

func (p *Parser) parseSnapshot(idx int, s snapshot.Snapshot) (*wm.Entry, error) {
	fail := func(reason Reason, id int64, err error) error {
		return &ParseError{Reason: reason, Snapshot: idx, Timestamp: s.Timestamp, RecordID: id, Err: err}
	}

	// Pass 1: instantiate.
	nodes := make(map[int64]wm.Container, len(s.Records))
	records := make(map[int64]snapshot.Record, len(s.Records))
	for _, r := range s.Records {
		if _, dup := nodes[r.ID]; dup {
			return nil, fail(ReasonDuplicateID, r.ID, fmt.Errorf("id %d appears more than once", r.ID))
		}
		c, err := build(r)
		if err != nil {
			return nil, fail(ReasonUnknownKind, r.ID, err)
		}
		nodes[r.ID] = c
		records[r.ID] = r
	}

	// Pass 2a: every parent chain must end at a root.
	state := make(map[int64]visitState, len(s.Records))
	for _, r := range s.Records {
		var path []int64
		cycle := false
		for cur := r.ID; ; {
			if state[cur] == visiting {
				cycle = true
				break
			}
			if state[cur] == done {
				break
			}
			state[cur] = visiting
			path = append(path, cur)

			pid, ok := records[cur].ParentID()
			if !ok {
				break
			}
			if _, exists := nodes[pid]; !exists {
				return nil, fail(ReasonMissingParent, cur, fmt.Errorf("parent %d not found", pid))
			}
			cur = pid
		}
		for _, id := range path {
			state[id] = done
		}
		if cycle {
			return nil, fail(ReasonCycle, r.ID, fmt.Errorf("parent chain of %d loops", r.ID))
		}
	}

	// Pass 2b: link in record order.
	var displays []*wm.Display
	for _, r := range s.Records {
		child := nodes[r.ID]
		pid, ok := r.ParentID()
		if !ok {
			d, isDisplay := child.(*wm.Display)
			if !isDisplay {
				return nil, fail(ReasonParentKind, r.ID,
					fmt.Errorf("root record is %s, want %s", child.Kind(), wm.KindDisplay))
			}
			displays = append(displays, d)
			continue
		}
		if err := wm.Attach(nodes[pid], child); err != nil {
			if errors.Is(err, wm.ErrParentKind) {
				return nil, fail(ReasonParentKind, r.ID, err)
			}
			return nil, fail(ReasonMalformed, r.ID, err)
		}
	}
	if len(displays) == 0 {
		return nil, fail(ReasonNoRoot, -1, errors.New("snapshot has no Display record"))
	}

	entry, err := wm.NewEntry(s.Timestamp, displays, wm.EntryOptions{
		FocusedWindow: s.FocusedWindow,
		FocusedApp:    s.FocusedApp,
	})
	if err != nil {
		if errors.Is(err, wm.ErrParentKind) {
			return nil, fail(ReasonParentKind, -1, err)
		}
		return nil, fail(ReasonMalformed, -1, err)
	}
	p.logger.Debug("parsed snapshot",
		"index", idx,
		"timestamp", s.Timestamp,
		"records", len(s.Records),
		"windows", len(entry.WindowStates()))
	return entry, nil
}

func build(r snapshot.Record) (wm.Container, error) {
	kind, ok := wm.ParseKind(r.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown container kind %q", r.Kind)
	}
	attrs := wm.Attrs{
		ID:      r.ID,
		Token:   r.Token,
		Title:   r.Title,
		Visible: r.Visible,
		Rects:   r.Rects,
	}

	switch kind {
	case wm.KindDisplay:
		return wm.NewDisplay(attrs, r.DisplayID), nil
	case wm.KindActivityTask:
		return wm.NewActivityTask(attrs, r.TaskID), nil
	case wm.KindActivity:
		return wm.NewActivity(attrs, wm.ActivityInfo{
			State:       r.State,
			FrontOfTask: r.FrontOfTask,
			ProcID:      r.ProcID,
			Translucent: r.Translucent,
		}), nil
	case wm.KindWindowState:
		band, ok := wm.ParseBand(r.Band)
		if !ok {
			return nil, fmt.Errorf("unknown window band %q", r.Band)
		}
		return wm.NewWindowState(attrs, r.LayerID, band), nil
	default:
		return wm.NewGenericContainer(attrs), nil
	}
}
