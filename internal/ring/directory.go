package ring

// sectorInfo is the in-memory view of one sector, rebuilt by Format/Scan
// and kept current by Append.
type sectorInfo struct {
	State   SectorState
	Version uint32 // meaningful unless State == SectorEmpty
	Fill    int    // slots written (first empty slot index)

	// clean records that an empty sector was verified fully erased, so the
	// writer may program it without a fresh erase.
	clean bool
}

// directory orders all sectors by logical age. Sectors are reused in
// strict physical rotation, so the headered sectors always form one
// contiguous arc from oldest to newest.
type directory struct {
	sectors []sectorInfo
	oldest  int // physical index of the oldest headered sector
	newest  int // physical index of the active sector
}

func newDirectory(sectorCount int) *directory {
	d := &directory{sectors: make([]sectorInfo, sectorCount), oldest: -1, newest: -1}
	for i := range d.sectors {
		d.sectors[i] = sectorInfo{State: SectorEmpty, clean: true}
	}
	return d
}

func (d *directory) next(sector int) int {
	return (sector + 1) % len(d.sectors)
}
