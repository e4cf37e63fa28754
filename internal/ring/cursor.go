package ring

import "fmt"

// position addresses one slot as a (sector, slot) pair. sector is a
// physical index; slot may equal the per-sector slot count, meaning the
// sector is full and the position logically sits at the start of the next
// sector in ring order.
type position struct {
	sector int
	slot   int
}

func (p position) String() string {
	return fmt.Sprintf("%d/%d", p.sector, p.slot)
}

// linear maps a position to its distance in slots from the start of the
// oldest sector, following ring order. Positions on the same ring compare
// by linear value; the discard boundary never exceeds the read position,
// which never exceeds the write position.
func (d *directory) linear(g geometry, p position) int {
	delta := p.sector - d.oldest
	if delta < 0 {
		delta += len(d.sectors)
	}
	return delta*g.slots + p.slot
}
