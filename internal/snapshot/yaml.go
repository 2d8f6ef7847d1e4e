package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/region"
)

type yamlTrace struct {
	Snapshots []yamlSnapshot `yaml:"snapshots"`
}

type yamlSnapshot struct {
	Timestamp     int64        `yaml:"timestamp"`
	FocusedWindow string       `yaml:"focused_window,omitempty"`
	FocusedApp    string       `yaml:"focused_app,omitempty"`
	Containers    []yamlRecord `yaml:"containers"`
}

type yamlRecord struct {
	ID          int64   `yaml:"id"`
	Parent      *int64  `yaml:"parent,omitempty"`
	Kind        string  `yaml:"kind"`
	Token       string  `yaml:"token,omitempty"`
	Title       string  `yaml:"title,omitempty"`
	Visible     bool    `yaml:"visible,omitempty"`
	DisplayID   int     `yaml:"display_id,omitempty"`
	TaskID      int     `yaml:"task_id,omitempty"`
	LayerID     int     `yaml:"layer_id,omitempty"`
	Band        string  `yaml:"band,omitempty"`
	State       string  `yaml:"state,omitempty"`
	ProcID      int     `yaml:"proc_id,omitempty"`
	Translucent bool    `yaml:"translucent,omitempty"`
	FrontOfTask bool    `yaml:"front_of_task,omitempty"`
	Bounds      [][]int `yaml:"bounds,omitempty,flow"`
}

// YAMLDecoder reads the YAML trace format. Unknown fields are rejected.
type YAMLDecoder struct{}

// Decode implements Decoder. Empty input yields no snapshots. The input must
// hold a single YAML document.
func (YAMLDecoder) Decode(data []byte) ([]Snapshot, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc yamlTrace
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse YAML trace: %w", err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML trace: %w", err)
		}
		return nil, fmt.Errorf("failed to parse YAML trace: unexpected document after the first (line %d)", extra.Line)
	}

	out := make([]Snapshot, 0, len(doc.Snapshots))
	for i, ys := range doc.Snapshots {
		s := Snapshot{
			Timestamp:     ys.Timestamp,
			FocusedWindow: ys.FocusedWindow,
			FocusedApp:    ys.FocusedApp,
			Records:       make([]Record, 0, len(ys.Containers)),
		}
		for j, yr := range ys.Containers {
			rects, err := toRects(yr.Bounds)
			if err != nil {
				return nil, fmt.Errorf("snapshot %d container %d (id %d): %w", i, j, yr.ID, err)
			}
			s.Records = append(s.Records, Record{
				ID:          yr.ID,
				Parent:      yr.Parent,
				Kind:        yr.Kind,
				Token:       yr.Token,
				Title:       yr.Title,
				Visible:     yr.Visible,
				Rects:       rects,
				State:       yr.State,
				ProcID:      yr.ProcID,
				Translucent: yr.Translucent,
				FrontOfTask: yr.FrontOfTask,
				TaskID:      yr.TaskID,
				DisplayID:   yr.DisplayID,
				LayerID:     yr.LayerID,
				Band:        yr.Band,
			})
		}
		out = append(out, s)
	}
	return out, nil
}

func toRects(bounds [][]int) ([]region.Rect, error) {
	if len(bounds) == 0 {
		return nil, nil
	}
	rects := make([]region.Rect, 0, len(bounds))
	for i, b := range bounds {
		if len(b) != 4 {
			return nil, fmt.Errorf("bounds[%d]: want [left, top, right, bottom], got %d values", i, len(b))
		}
		rects = append(rects, region.Rect{Left: b[0], Top: b[1], Right: b[2], Bottom: b[3]})
	}
	return rects, nil
}

// YAMLEncoder writes the YAML trace format.
type YAMLEncoder struct{}

// Encode implements Encoder.
func (YAMLEncoder) Encode(snapshots []Snapshot) ([]byte, error) {
	doc := yamlTrace{Snapshots: make([]yamlSnapshot, 0, len(snapshots))}
	for _, s := range snapshots {
		ys := yamlSnapshot{
			Timestamp:     s.Timestamp,
			FocusedWindow: s.FocusedWindow,
			FocusedApp:    s.FocusedApp,
			Containers:    make([]yamlRecord, 0, len(s.Records)),
		}
		for _, r := range s.Records {
			yr := yamlRecord{
				ID:          r.ID,
				Parent:      r.Parent,
				Kind:        r.Kind,
				Token:       r.Token,
				Title:       r.Title,
				Visible:     r.Visible,
				DisplayID:   r.DisplayID,
				TaskID:      r.TaskID,
				LayerID:     r.LayerID,
				Band:        r.Band,
				State:       r.State,
				ProcID:      r.ProcID,
				Translucent: r.Translucent,
				FrontOfTask: r.FrontOfTask,
			}
			for _, rc := range r.Rects {
				yr.Bounds = append(yr.Bounds, []int{rc.Left, rc.Top, rc.Right, rc.Bottom})
			}
			ys.Containers = append(ys.Containers, yr)
		}
		doc.Snapshots = append(doc.Snapshots, ys)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode YAML trace: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML trace: %w", err)
	}
	return buf.Bytes(), nil
}
