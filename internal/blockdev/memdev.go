package blockdev

import "fmt"

// Erased is the value every byte holds after an erase.
const Erased = 0xFF

// MemDevice is an in-memory flash simulator. It enforces the Device
// contract strictly so that engine bugs (double-program, reading past the
// end, unaligned erases) surface as errors in tests instead of silent
// corruption. It also counts erases per unit and supports fault injection.
//
// MemDevice is not safe for concurrent use, same as the engine it backs.
type MemDevice struct {
	unitSize int
	data     []byte
	written  []bool

	eraseCounts []int

	// failNext, when non-nil, makes the next matching operation fail.
	failNext *faultPlan
}

type faultPlan struct {
	op        string // "erase", "program", "read"
	tornBytes int    // for program: bytes written before the failure
}

// NewMemDevice creates a simulator with unitCount erase units of unitSize
// bytes each, fully erased.
func NewMemDevice(unitSize, unitCount int) *MemDevice {
	total := unitSize * unitCount
	d := &MemDevice{
		unitSize:    unitSize,
		data:        make([]byte, total),
		written:     make([]bool, total),
		eraseCounts: make([]int, unitCount),
	}
	for i := range d.data {
		d.data[i] = Erased
	}
	return d
}

// EraseUnitSize implements Device.
func (d *MemDevice) EraseUnitSize() int { return d.unitSize }

// Size implements Device.
func (d *MemDevice) Size() int64 { return int64(len(d.data)) }

// Erase implements Device.
func (d *MemDevice) Erase(off int64, length int) error {
	if d.failNext != nil && d.failNext.op == "erase" {
		d.failNext = nil
		return fmt.Errorf("memdev: injected erase fault at %d", off)
	}
	if off < 0 || off+int64(length) > d.Size() {
		return ErrOutOfRange
	}
	if off%int64(d.unitSize) != 0 || length%d.unitSize != 0 {
		return ErrUnaligned
	}
	for i := off; i < off+int64(length); i++ {
		d.data[i] = Erased
		d.written[i] = false
	}
	for u := int(off) / d.unitSize; u < (int(off)+length)/d.unitSize; u++ {
		d.eraseCounts[u]++
	}
	return nil
}

// Program implements Device.
func (d *MemDevice) Program(off int64, p []byte) error {
	if off < 0 || off+int64(len(p)) > d.Size() {
		return ErrOutOfRange
	}
	if d.failNext != nil && d.failNext.op == "program" {
		plan := d.failNext
		d.failNext = nil
		// Simulate a torn write: part of the data lands, then power dies.
		n := plan.tornBytes
		if n > len(p) {
			n = len(p)
		}
		for i := 0; i < n; i++ {
			d.data[off+int64(i)] = p[i]
			d.written[off+int64(i)] = true
		}
		return fmt.Errorf("memdev: injected program fault at %d", off)
	}
	for i := range p {
		if d.written[off+int64(i)] {
			return fmt.Errorf("%w (offset %d)", ErrNotErased, off+int64(i))
		}
	}
	for i := range p {
		d.data[off+int64(i)] = p[i]
		d.written[off+int64(i)] = true
	}
	return nil
}

// Read implements Device.
func (d *MemDevice) Read(off int64, length int) ([]byte, error) {
	if d.failNext != nil && d.failNext.op == "read" {
		d.failNext = nil
		return nil, fmt.Errorf("memdev: injected read fault at %d", off)
	}
	if off < 0 || off+int64(length) > d.Size() {
		return nil, ErrOutOfRange
	}
	return append([]byte(nil), d.data[off:off+int64(length)]...), nil
}

// EraseCounts returns a copy of the per-unit erase counters.
func (d *MemDevice) EraseCounts() []int {
	return append([]int(nil), d.eraseCounts...)
}

// FailNextErase makes the next Erase call fail without touching the medium.
func (d *MemDevice) FailNextErase() { d.failNext = &faultPlan{op: "erase"} }

// FailNextRead makes the next Read call fail.
func (d *MemDevice) FailNextRead() { d.failNext = &faultPlan{op: "read"} }

// FailNextProgram makes the next Program call fail after tornBytes bytes
// have already landed on the medium, simulating power loss mid-write.
func (d *MemDevice) FailNextProgram(tornBytes int) {
	d.failNext = &faultPlan{op: "program", tornBytes: tornBytes}
}
