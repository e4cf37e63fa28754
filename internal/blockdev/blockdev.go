package blockdev

import "errors"

// Device is the raw block storage the ring engine runs on. Implementations
// must honor erase-before-write semantics: Erase returns every byte of the
// covered erase units to 0xFF, Program may only touch bytes that are
// currently erased, and Read returns exactly what was last programmed (or
// 0xFF for erased bytes).
//
// Addresses are partition-relative. The engine never issues a call that
// crosses the device end, and never programs the same byte twice between
// erasures; drivers are free to reject either as a bug.
type Device interface {
	// EraseUnitSize returns the size in bytes of the smallest erasable unit.
	EraseUnitSize() int

	// Size returns the total partition size in bytes. It is a multiple of
	// EraseUnitSize.
	Size() int64

	// Erase resets the range [off, off+length) to the erased state. Both off
	// and length must be multiples of EraseUnitSize.
	Erase(off int64, length int) error

	// Program writes p at off. Every target byte must be erased.
	Program(off int64, p []byte) error

	// Read returns length bytes starting at off.
	Read(off int64, length int) ([]byte, error)
}

var (
	// ErrOutOfRange is returned when a call crosses the device boundary.
	ErrOutOfRange = errors.New("blockdev: access out of range")

	// ErrUnaligned is returned when an erase is not aligned to an erase unit.
	ErrUnaligned = errors.New("blockdev: unaligned erase")

	// ErrNotErased is returned when Program targets a byte that was already
	// programmed since the last erase.
	ErrNotErased = errors.New("blockdev: programming non-erased byte")
)
