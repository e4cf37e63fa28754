package ring

import (
	"fmt"

	"github.com/rzbill/ringlog/internal/blockdev"
)

// geometry is the pure shape of a partition: derived once from the device
// and the record size, never mutated.
type geometry struct {
	sectorSize  int
	sectorCount int
	recordSize  int
	slotSize    int // slotHeaderSize + recordSize
	slots       int // slots per sector
}

func computeGeometry(dev blockdev.Device, recordSize int) (geometry, error) {
	if recordSize <= 0 {
		return geometry{}, fmt.Errorf("ringlog: record size %d must be positive", recordSize)
	}
	sectorSize := dev.EraseUnitSize()
	if sectorSize <= 0 || dev.Size()%int64(sectorSize) != 0 {
		return geometry{}, fmt.Errorf("ringlog: device size %d not a multiple of erase unit %d", dev.Size(), sectorSize)
	}
	g := geometry{
		sectorSize:  sectorSize,
		sectorCount: int(dev.Size() / int64(sectorSize)),
		recordSize:  recordSize,
		slotSize:    slotHeaderSize + recordSize,
	}
	g.slots = (sectorSize - sectorHeaderSize) / g.slotSize
	if g.slots < 1 {
		return geometry{}, fmt.Errorf("ringlog: record size %d does not fit a %d-byte erase unit", recordSize, sectorSize)
	}
	if g.sectorCount < 2 {
		return geometry{}, fmt.Errorf("ringlog: partition needs at least 2 sectors, has %d", g.sectorCount)
	}
	return g, nil
}

func (g geometry) sectorOff(sector int) int64 {
	return int64(sector) * int64(g.sectorSize)
}

func (g geometry) slotOff(sector, slot int) int64 {
	return g.sectorOff(sector) + sectorHeaderSize + int64(slot)*int64(g.slotSize)
}
