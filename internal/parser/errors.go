package parser

import (
	"errors"
	"fmt"
)

// Reason categorizes a parse failure.
type Reason string

const (
	// ReasonMalformed indicates the decoder rejected the input bytes.
	ReasonMalformed Reason = "malformed"

	// ReasonMissingParent indicates a record references an unknown parent id.
	ReasonMissingParent Reason = "missing_parent"

	// ReasonCycle indicates parent references form a loop.
	ReasonCycle Reason = "cycle"

	// ReasonSnapshotCount indicates a dump did not hold exactly one snapshot.
	ReasonSnapshotCount Reason = "snapshot_count"

	// ReasonParentKind indicates a record sits under a parent that may not
	// hold it, for example an Activity outside an ActivityTask.
	ReasonParentKind Reason = "parent_kind"

	// ReasonDuplicateID indicates two records of one snapshot share an id.
	ReasonDuplicateID Reason = "duplicate_id"

	// ReasonUnknownKind indicates a record kind or band is not recognized.
	ReasonUnknownKind Reason = "unknown_kind"

	// ReasonTimestampOrder indicates snapshot timestamps are not strictly
	// increasing.
	ReasonTimestampOrder Reason = "timestamp_order"

	// ReasonNoRoot indicates a snapshot has no Display root.
	ReasonNoRoot Reason = "no_root"
)

// ParseError reports a structural failure that aborts the whole parse.
type ParseError struct {
	// Reason identifies the failure category.
	Reason Reason

	// Snapshot is the index of the offending snapshot, or -1.
	Snapshot int

	// Timestamp of the offending snapshot, when known.
	Timestamp int64

	// RecordID is the offending record id, or -1.
	RecordID int64

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := string(e.Reason)
	if e.Snapshot >= 0 {
		msg += fmt.Sprintf(" (snapshot %d, timestamp %d", e.Snapshot, e.Timestamp)
		if e.RecordID >= 0 {
			msg += fmt.Sprintf(", record %d", e.RecordID)
		}
		msg += ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsReason reports whether err is a ParseError with the given reason.
// Uses errors.As to handle wrapped errors.
func IsReason(err error, reason Reason) bool {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Reason == reason
	}
	return false
}
