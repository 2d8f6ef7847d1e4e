package snapshot

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/region"
)

// Field numbers of the binary trace messages.
//
//	message Trace    { repeated Snapshot snapshots = 1; }
//	message Snapshot { int64 timestamp = 1; repeated Record records = 2;
//	                   string focused_window = 3; string focused_app = 4; }
//	message Record   { int64 id = 1; optional int64 parent = 2; string kind = 3;
//	                   string token = 4; string title = 5; bool visible = 6;
//	                   repeated Rect rects = 7; string state = 8; int32 proc_id = 9;
//	                   bool translucent = 10; bool front_of_task = 11;
//	                   int32 task_id = 12; int32 display_id = 13;
//	                   int32 layer_id = 14; string band = 15; }
//	message Rect     { int32 left = 1; int32 top = 2; int32 right = 3; int32 bottom = 4; }
const (
	traceSnapshots protowire.Number = 1

	snapshotTimestamp     protowire.Number = 1
	snapshotRecords       protowire.Number = 2
	snapshotFocusedWindow protowire.Number = 3
	snapshotFocusedApp    protowire.Number = 4

	recordID          protowire.Number = 1
	recordParent      protowire.Number = 2
	recordKind        protowire.Number = 3
	recordToken       protowire.Number = 4
	recordTitle       protowire.Number = 5
	recordVisible     protowire.Number = 6
	recordRects       protowire.Number = 7
	recordState       protowire.Number = 8
	recordProcID      protowire.Number = 9
	recordTranslucent protowire.Number = 10
	recordFrontOfTask protowire.Number = 11
	recordTaskID      protowire.Number = 12
	recordDisplayID   protowire.Number = 13
	recordLayerID     protowire.Number = 14
	recordBand        protowire.Number = 15

	rectLeft   protowire.Number = 1
	rectTop    protowire.Number = 2
	rectRight  protowire.Number = 3
	rectBottom protowire.Number = 4
)

// ProtoDecoder reads the protobuf wire trace format. Unknown fields are
// skipped.
type ProtoDecoder struct{}

// Decode implements Decoder.
func (ProtoDecoder) Decode(data []byte) ([]Snapshot, error) {
	var out []Snapshot
	err := walk(data, func(f field) error {
		if f.num != traceSnapshots {
			return nil
		}
		if err := f.expect(protowire.BytesType); err != nil {
			return err
		}
		s, err := decodeSnapshot(f.payload)
		if err != nil {
			return fmt.Errorf("snapshot %d: %w", len(out), err)
		}
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse binary trace: %w", err)
	}
	return out, nil
}

type field struct {
	num     protowire.Number
	typ     protowire.Type
	varint  uint64
	payload []byte
}

func (f field) expect(typ protowire.Type) error {
	if f.typ != typ {
		return fmt.Errorf("field %d: unexpected wire type %d", f.num, f.typ)
	}
	return nil
}

func (f field) int64Value() (int64, error) {
	if err := f.expect(protowire.VarintType); err != nil {
		return 0, err
	}
	return int64(f.varint), nil
}

// intValue reads an int32 field. Values outside the int32 range are rejected.
func (f field) intValue() (int, error) {
	v, err := f.int64Value()
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("field %d: value %d overflows int32", f.num, v)
	}
	return int(v), nil
}

func (f field) boolValue() (bool, error) {
	if err := f.expect(protowire.VarintType); err != nil {
		return false, err
	}
	return protowire.DecodeBool(f.varint), nil
}

func (f field) stringValue() (string, error) {
	if err := f.expect(protowire.BytesType); err != nil {
		return "", err
	}
	return string(f.payload), nil
}

// walk calls fn for every field of one message.
func walk(b []byte, fn func(field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.varint = v
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.payload = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func decodeSnapshot(b []byte) (Snapshot, error) {
	var s Snapshot
	err := walk(b, func(f field) error {
		var err error
		switch f.num {
		case snapshotTimestamp:
			s.Timestamp, err = f.int64Value()
		case snapshotFocusedWindow:
			s.FocusedWindow, err = f.stringValue()
		case snapshotFocusedApp:
			s.FocusedApp, err = f.stringValue()
		case snapshotRecords:
			if err = f.expect(protowire.BytesType); err != nil {
				return err
			}
			var r Record
			if r, err = decodeRecord(f.payload); err != nil {
				return fmt.Errorf("record %d: %w", len(s.Records), err)
			}
			s.Records = append(s.Records, r)
		}
		return err
	})
	return s, err
}

func decodeRecord(b []byte) (Record, error) {
	var r Record
	err := walk(b, func(f field) error {
		var err error
		switch f.num {
		case recordID:
			r.ID, err = f.int64Value()
		case recordParent:
			var p int64
			if p, err = f.int64Value(); err == nil {
				r.Parent = ParentRef(p)
			}
		case recordKind:
			r.Kind, err = f.stringValue()
		case recordToken:
			r.Token, err = f.stringValue()
		case recordTitle:
			r.Title, err = f.stringValue()
		case recordVisible:
			r.Visible, err = f.boolValue()
		case recordRects:
			if err = f.expect(protowire.BytesType); err != nil {
				return err
			}
			var rc region.Rect
			if rc, err = decodeRect(f.payload); err == nil {
				r.Rects = append(r.Rects, rc)
			}
		case recordState:
			r.State, err = f.stringValue()
		case recordProcID:
			r.ProcID, err = f.intValue()
		case recordTranslucent:
			r.Translucent, err = f.boolValue()
		case recordFrontOfTask:
			r.FrontOfTask, err = f.boolValue()
		case recordTaskID:
			r.TaskID, err = f.intValue()
		case recordDisplayID:
			r.DisplayID, err = f.intValue()
		case recordLayerID:
			r.LayerID, err = f.intValue()
		case recordBand:
			r.Band, err = f.stringValue()
		}
		return err
	})
	return r, err
}

func decodeRect(b []byte) (region.Rect, error) {
	var rc region.Rect
	err := walk(b, func(f field) error {
		var err error
		switch f.num {
		case rectLeft:
			rc.Left, err = f.intValue()
		case rectTop:
			rc.Top, err = f.intValue()
		case rectRight:
			rc.Right, err = f.intValue()
		case rectBottom:
			rc.Bottom, err = f.intValue()
		}
		return err
	})
	return rc, err
}

// ProtoEncoder writes the protobuf wire trace format. Zero-valued scalar
// fields are omitted; a parent reference is always written when present.
type ProtoEncoder struct{}

// Encode implements Encoder. It fails when an int32 field is out of range.
func (ProtoEncoder) Encode(snapshots []Snapshot) ([]byte, error) {
	var b []byte
	for i, s := range snapshots {
		msg, err := encodeSnapshot(s)
		if err != nil {
			return nil, fmt.Errorf("snapshot %d: %w", i, err)
		}
		b = appendMessage(b, traceSnapshots, msg)
	}
	return b, nil
}

func encodeSnapshot(s Snapshot) ([]byte, error) {
	var b []byte
	b = appendInt64(b, snapshotTimestamp, s.Timestamp)
	for i, r := range s.Records {
		msg, err := encodeRecord(r)
		if err != nil {
			return nil, fmt.Errorf("record %d (id %d): %w", i, r.ID, err)
		}
		b = appendMessage(b, snapshotRecords, msg)
	}
	b = appendString(b, snapshotFocusedWindow, s.FocusedWindow)
	b = appendString(b, snapshotFocusedApp, s.FocusedApp)
	return b, nil
}

func encodeRecord(r Record) ([]byte, error) {
	var b []byte
	b = appendInt64(b, recordID, r.ID)
	if r.Parent != nil {
		b = protowire.AppendTag(b, recordParent, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*r.Parent))
	}
	b = appendString(b, recordKind, r.Kind)
	b = appendString(b, recordToken, r.Token)
	b = appendString(b, recordTitle, r.Title)
	b = appendBool(b, recordVisible, r.Visible)
	for _, rc := range r.Rects {
		msg, err := encodeRect(rc)
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, recordRects, msg)
	}
	b = appendString(b, recordState, r.State)

	var err error
	if b, err = appendInt32(b, recordProcID, r.ProcID); err != nil {
		return nil, err
	}
	b = appendBool(b, recordTranslucent, r.Translucent)
	b = appendBool(b, recordFrontOfTask, r.FrontOfTask)
	for _, v := range []struct {
		num protowire.Number
		val int
	}{
		{recordTaskID, r.TaskID},
		{recordDisplayID, r.DisplayID},
		{recordLayerID, r.LayerID},
	} {
		if b, err = appendInt32(b, v.num, v.val); err != nil {
			return nil, err
		}
	}
	b = appendString(b, recordBand, r.Band)
	return b, nil
}

func encodeRect(rc region.Rect) ([]byte, error) {
	var b []byte
	var err error
	for _, v := range []struct {
		num protowire.Number
		val int
	}{
		{rectLeft, rc.Left},
		{rectTop, rc.Top},
		{rectRight, rc.Right},
		{rectBottom, rc.Bottom},
	} {
		if b, err = appendInt32(b, v.num, v.val); err != nil {
			return nil, fmt.Errorf("rect %s: %w", rc, err)
		}
	}
	return b, nil
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendInt32(b []byte, num protowire.Number, v int) ([]byte, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return b, fmt.Errorf("field %d: value %d overflows int32", num, v)
	}
	return appendInt64(b, num, int64(v)), nil
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}
