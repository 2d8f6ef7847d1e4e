// Package snapshot defines the raw record format of window-manager traces and
// the codecs that read and write it.
//
// A trace file holds an ordered list of snapshots. Each snapshot is a flat
// list of container records linked by parent id; the parser package turns
// records into a sealed wm hierarchy. Two encodings are supported:
//
//   - YAML, for hand-written fixtures and readable diffs
//   - protobuf wire format, for captured traces
//
// Codecs never retain the input buffer.
package snapshot

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/region"
)

// Record is one container of a snapshot.
type Record struct {
	ID          int64
	Parent      *int64
	Kind        string
	Token       string
	Title       string
	Visible     bool
	Rects       []region.Rect
	State       string
	ProcID      int
	Translucent bool
	FrontOfTask bool
	TaskID      int
	DisplayID   int
	LayerID     int
	Band        string
}

// ParentID returns the parent id, or false for a root record.
func (r Record) ParentID() (int64, bool) {
	if r.Parent == nil {
		return 0, false
	}
	return *r.Parent, true
}

// ParentRef returns a parent reference for Record.Parent.
func ParentRef(id int64) *int64 {
	return &id
}

// Snapshot is the window-manager state at one timestamp.
type Snapshot struct {
	Timestamp     int64
	FocusedWindow string
	FocusedApp    string
	Records       []Record
}

// Decoder turns encoded trace bytes into snapshots in source order.
type Decoder interface {
	Decode(data []byte) ([]Snapshot, error)
}

// Encoder is the inverse of Decoder.
type Encoder interface {
	Encode(snapshots []Snapshot) ([]byte, error)
}

// Format names a trace encoding.
type Format string

const (
	FormatAuto  Format = "auto"
	FormatYAML  Format = "yaml"
	FormatProto Format = "proto"
)

// ValidFormats lists the accepted format names.
var ValidFormats = []string{string(FormatAuto), string(FormatYAML), string(FormatProto)}

// ForFormat returns the decoder for a concrete format.
func ForFormat(f Format) (Decoder, error) {
	switch f {
	case FormatYAML:
		return YAMLDecoder{}, nil
	case FormatProto:
		return ProtoDecoder{}, nil
	default:
		return nil, fmt.Errorf("unknown trace format %q (valid: yaml, proto)", f)
	}
}

// EncoderFor returns the encoder for a concrete format.
func EncoderFor(f Format) (Encoder, error) {
	switch f {
	case FormatYAML:
		return YAMLEncoder{}, nil
	case FormatProto:
		return ProtoEncoder{}, nil
	default:
		return nil, fmt.Errorf("unknown trace format %q (valid: yaml, proto)", f)
	}
}

// DetectFormat picks a format from the file extension, falling back to
// sniffing the content.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".pb", ".winscope", ".bin":
		return FormatProto
	}
	if utf8.Valid(data) && bytes.Contains(data, []byte("snapshots:")) {
		return FormatYAML
	}
	return FormatProto
}

// Resolve returns the decoder for f, detecting the format when f is auto or
// empty.
func Resolve(f Format, path string, data []byte) (Decoder, error) {
	if f == "" || f == FormatAuto {
		f = DetectFormat(path, data)
	}
	return ForFormat(f)
}
