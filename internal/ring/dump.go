package ring

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Dump writes the sector table and cursor state to w. Operator diagnostic
// only; the format is not parsed by anything.
func (l *Log) Dump(w io.Writer) {
	fmt.Fprintf(w, "partition: %d sectors x %d bytes, %d slots/sector, record size %d, tag %#x\n",
		l.geo.sectorCount, l.geo.sectorSize, l.geo.slots, l.geo.recordSize, l.tag)
	if l.dir == nil {
		fmt.Fprintln(w, "cursor: not scanned")
		return
	}
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTOR\tVERSION\tSTATE\tFILL")
	for i, s := range l.dir.sectors {
		version := "-"
		fill := "-"
		if s.State != SectorEmpty {
			version = fmt.Sprintf("%d", s.Version)
			fill = fmt.Sprintf("%d/%d", s.Fill, l.geo.slots)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, version, s.State, fill)
	}
	tw.Flush()
	fmt.Fprintf(w, "cursor: write=%s read=%s boundary=%s\n", l.write, l.read, l.boundary)
	if est, err := l.EstimateCount(); err == nil {
		fmt.Fprintf(w, "records: ~%d of %d\n", est, l.Capacity())
	}
}
