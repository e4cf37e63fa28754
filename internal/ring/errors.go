package ring

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMoreRecords is returned by Fetch when the read cursor has caught
	// up with the write cursor. It is an expected signal, not a failure.
	ErrNoMoreRecords = errors.New("ringlog: no more records")

	// ErrIncompatibleLayout is returned by Scan when a persisted sector
	// header carries a different tag or record size than the caller's.
	// Recovery requires an explicit Format.
	ErrIncompatibleLayout = errors.New("ringlog: incompatible partition layout")

	// ErrCorruptPartition is returned by Scan when no sector carries a
	// recognizable header. Recovery requires an explicit Format.
	ErrCorruptPartition = errors.New("ringlog: no valid sector header found")

	// ErrCorruptRecord is returned by Fetch when the cursor points at an
	// empty slot where a record was expected. It indicates a recovery bug.
	ErrCorruptRecord = errors.New("ringlog: slot state inconsistent with cursor")

	// ErrRecordSize is returned by Append when the record does not match
	// the configured record size. Rejected before any medium access.
	ErrRecordSize = errors.New("ringlog: record does not match configured size")

	// ErrNeedScan is returned by mutating operations after a medium failure
	// left sector state ambiguous, and before the first Format or Scan.
	ErrNeedScan = errors.New("ringlog: scan required before use")
)

// MediumError wraps a failed erase/program/read with enough context for the
// caller to log and decide. The engine never retries.
type MediumError struct {
	Op     string // "erase", "program" or "read"
	Sector int
	Slot   int // -1 when the operation was not slot-scoped
	Err    error
}

func (e *MediumError) Error() string {
	if e.Slot < 0 {
		return fmt.Sprintf("ringlog: %s failed on sector %d: %v", e.Op, e.Sector, e.Err)
	}
	return fmt.Sprintf("ringlog: %s failed on sector %d slot %d: %v", e.Op, e.Sector, e.Slot, e.Err)
}

func (e *MediumError) Unwrap() error { return e.Err }
