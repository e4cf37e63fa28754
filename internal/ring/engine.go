package ring

import (
	"fmt"
	"time"

	"github.com/rzbill/ringlog/internal/blockdev"
	"github.com/rzbill/ringlog/pkg/log"
)

// MetricsHook is a minimal hook surface for engine observations. All
// methods are called synchronously from engine operations.
type MetricsHook interface {
	ObserveAppend(elapsed time.Duration)
	ObserveFetch(elapsed time.Duration)
	ObserveErase(sector int)
	ObserveEviction(slotsLost int)
	ObserveMediumError(op string)
}

// NoopMetrics is used when no metrics hook is provided.
type NoopMetrics struct{}

func (NoopMetrics) ObserveAppend(time.Duration) {}
func (NoopMetrics) ObserveFetch(time.Duration)  {}
func (NoopMetrics) ObserveErase(int)            {}
func (NoopMetrics) ObserveEviction(int)         {}
func (NoopMetrics) ObserveMediumError(string)   {}

// Options configures a Log.
type Options struct {
	// Tag distinguishes incompatible record layouts. Scan rejects a
	// partition formatted with a different tag.
	Tag uint32
	// RecordSize is the fixed payload size in bytes.
	RecordSize int
	// Metrics observes engine operations. Optional.
	Metrics MetricsHook
	// Logger receives engine lifecycle events. Optional.
	Logger log.Logger
}

// Log is one ring log over one partition. It owns the cursor and sector
// directory exclusively; concurrent use must be serialized by the caller.
type Log struct {
	dev blockdev.Device
	geo geometry
	tag uint32

	dir      *directory
	write    position // next slot Append programs
	read     position // next slot Fetch returns
	boundary position // oldest slot not yet discarded

	// needScan is set when a failed erase/program leaves sector state
	// ambiguous; mutating operations refuse to run until Scan or Format.
	needScan bool

	metrics MetricsHook
	logger  log.Logger
}

// New binds a Log to a device. It derives the partition geometry but does
// not touch the medium; call Scan to recover existing data or Format to
// start fresh.
func New(dev blockdev.Device, opts Options) (*Log, error) {
	geo, err := computeGeometry(dev, opts.RecordSize)
	if err != nil {
		return nil, err
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	return &Log{
		dev:      dev,
		geo:      geo,
		tag:      opts.Tag,
		needScan: true,
		metrics:  metrics,
		logger:   logger.With(log.Component("ring")),
	}, nil
}

func (l *Log) medium(op string, sector, slot int, err error) error {
	l.metrics.ObserveMediumError(op)
	return &MediumError{Op: op, Sector: sector, Slot: slot, Err: err}
}

// Format erases every sector and initializes sector 0 as the active sector
// with version 0. All existing data is destroyed.
func (l *Log) Format() error {
	for i := 0; i < l.geo.sectorCount; i++ {
		if err := l.dev.Erase(l.geo.sectorOff(i), l.geo.sectorSize); err != nil {
			l.needScan = true
			return l.medium("erase", i, -1, err)
		}
		l.metrics.ObserveErase(i)
	}
	hdr := encodeSectorHeader(sectorHeader{Version: 0, Tag: l.tag, RecordSize: uint32(l.geo.recordSize)})
	if err := l.dev.Program(l.geo.sectorOff(0), hdr); err != nil {
		l.needScan = true
		return l.medium("program", 0, -1, err)
	}
	dir := newDirectory(l.geo.sectorCount)
	dir.sectors[0] = sectorInfo{State: SectorActive, Version: 0}
	dir.oldest, dir.newest = 0, 0
	l.dir = dir
	l.write = position{}
	l.read = position{}
	l.boundary = position{}
	l.needScan = false
	l.logger.Debug("partition formatted",
		log.Int("sectors", l.geo.sectorCount),
		log.Int("slots_per_sector", l.geo.slots))
	return nil
}

// Scan rebuilds the sector directory and cursor from the medium alone. It
// is idempotent: scanning twice with no intervening writes yields the same
// cursor. Returns ErrIncompatibleLayout on a tag/record size mismatch and
// ErrCorruptPartition when no sector header is recognizable.
func (l *Log) Scan() error {
	dir := &directory{sectors: make([]sectorInfo, l.geo.sectorCount), oldest: -1, newest: -1}
	slotStates := make([][]slotState, l.geo.sectorCount)

	for i := 0; i < l.geo.sectorCount; i++ {
		buf, err := l.dev.Read(l.geo.sectorOff(i), l.geo.sectorSize)
		if err != nil {
			return l.medium("read", i, -1, err)
		}
		hdr, ok := decodeSectorHeader(buf)
		if !ok {
			// No header. A sector dirtied by an interrupted erase must be
			// erased again before reuse; clean tracks that distinction.
			dir.sectors[i] = sectorInfo{State: SectorEmpty, clean: allErased(buf)}
			continue
		}
		if hdr.Tag != l.tag || hdr.RecordSize != uint32(l.geo.recordSize) {
			return fmt.Errorf("%w: sector %d persisted tag=%#x recordSize=%d, want tag=%#x recordSize=%d",
				ErrIncompatibleLayout, i, hdr.Tag, hdr.RecordSize, l.tag, l.geo.recordSize)
		}
		states, fill := scanSlots(buf, l.geo)
		slotStates[i] = states
		dir.sectors[i] = sectorInfo{State: SectorFull, Version: hdr.Version, Fill: fill}
		if dir.oldest == -1 || versionLess(hdr.Version, dir.sectors[dir.oldest].Version) {
			dir.oldest = i
		}
		if dir.newest == -1 || versionLess(dir.sectors[dir.newest].Version, hdr.Version) {
			dir.newest = i
		}
	}
	if dir.oldest == -1 {
		return ErrCorruptPartition
	}
	dir.sectors[dir.newest].State = SectorActive

	write := position{dir.newest, dir.sectors[dir.newest].Fill}

	// The read position and discard boundary recover to the oldest slot
	// that is still valid and undiscarded.
	start := write
	p := position{dir.oldest, 0}
	for dir.linear(l.geo, p) < dir.linear(l.geo, write) {
		if p.slot == l.geo.slots {
			p = position{dir.next(p.sector), 0}
			continue
		}
		if slotStates[p.sector] != nil && slotStates[p.sector][p.slot] == slotValid {
			start = p
			break
		}
		p.slot++
	}

	l.dir = dir
	l.write = write
	l.read = start
	l.boundary = start
	l.needScan = false
	l.logger.Debug("scan complete",
		log.Int("oldest", dir.oldest),
		log.Int("active", dir.newest),
		log.Uint32("version", dir.sectors[dir.newest].Version),
		log.Str("write", l.write.String()),
		log.Str("read", l.read.String()))
	return nil
}

// freeSector erases one sector and, when it still held data, performs the
// eviction bookkeeping: cursors and the oldest pointer move past it so
// they never reference erased slots.
func (l *Log) freeSector(idx int) error {
	info := l.dir.sectors[idx]
	if err := l.dev.Erase(l.geo.sectorOff(idx), l.geo.sectorSize); err != nil {
		l.needScan = true
		return l.medium("erase", idx, -1, err)
	}
	l.metrics.ObserveErase(idx)
	after := l.dir.next(idx)
	if info.State != SectorEmpty {
		// Implicit eviction: the ring wrapped onto its oldest data.
		l.metrics.ObserveEviction(info.Fill)
		l.logger.Debug("sector evicted",
			log.Int("sector", idx),
			log.Uint32("version", info.Version),
			log.Int("slots_lost", info.Fill))
	}
	if l.boundary.sector == idx {
		l.boundary = position{after, 0}
	}
	if l.read.sector == idx {
		l.read = position{after, 0}
	}
	if l.dir.oldest == idx {
		l.dir.oldest = after
	}
	l.dir.sectors[idx] = sectorInfo{State: SectorEmpty, clean: true}
	return nil
}

// freeAhead keeps the sector after the write sector erased at all times.
// This is what reserves one sector of the partition and bounds the stored
// record count at Capacity: the oldest sector is evicted before the ring
// could ever fill completely.
func (l *Log) freeAhead() error {
	ahead := l.dir.next(l.write.sector)
	if info := l.dir.sectors[ahead]; info.State == SectorEmpty && info.clean {
		return nil
	}
	return l.freeSector(ahead)
}

// activateNext turns the sector after the write sector (kept free by
// freeAhead) into the new active sector with the next version.
func (l *Log) activateNext() error {
	next := l.dir.next(l.write.sector)
	if info := l.dir.sectors[next]; info.State != SectorEmpty || !info.clean {
		if err := l.freeSector(next); err != nil {
			return err
		}
	}
	version := l.dir.sectors[l.write.sector].Version + 1
	hdr := encodeSectorHeader(sectorHeader{Version: version, Tag: l.tag, RecordSize: uint32(l.geo.recordSize)})
	if err := l.dev.Program(l.geo.sectorOff(next), hdr); err != nil {
		l.needScan = true
		return l.medium("program", next, -1, err)
	}
	l.dir.sectors[l.write.sector].State = SectorFull
	l.dir.sectors[next] = sectorInfo{State: SectorActive, Version: version}
	l.dir.newest = next
	l.write = position{next, 0}
	return nil
}

// Append writes one record into the next free slot, rotating into the next
// sector when the active one is full and evicting the oldest sector when
// the ring wraps. The record must be exactly the configured record size.
func (l *Log) Append(record []byte) error {
	start := time.Now()
	if l.dir == nil || l.needScan {
		return ErrNeedScan
	}
	if len(record) != l.geo.recordSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrRecordSize, len(record), l.geo.recordSize)
	}
	if l.write.slot == l.geo.slots {
		if err := l.activateNext(); err != nil {
			return err
		}
	}
	if err := l.freeAhead(); err != nil {
		return err
	}
	off := l.geo.slotOff(l.write.sector, l.write.slot)
	if err := l.dev.Program(off+slotReserveOff, encodeReserve()); err != nil {
		l.needScan = true
		return l.medium("program", l.write.sector, l.write.slot, err)
	}
	if err := l.dev.Program(off+slotCommitOff, encodeCommit(record)); err != nil {
		l.needScan = true
		return l.medium("program", l.write.sector, l.write.slot, err)
	}
	l.write.slot++
	l.dir.sectors[l.write.sector].Fill = l.write.slot
	l.metrics.ObserveAppend(time.Since(start))
	return nil
}

// Fetch returns the record at the read position and advances it, skipping
// slots released by Discard or torn by power loss. Returns ErrNoMoreRecords
// when caught up with the writer.
func (l *Log) Fetch() ([]byte, error) {
	start := time.Now()
	if l.dir == nil {
		return nil, ErrNeedScan
	}
	for {
		if l.dir.linear(l.geo, l.read) >= l.dir.linear(l.geo, l.write) {
			return nil, ErrNoMoreRecords
		}
		if l.read.slot == l.geo.slots {
			l.read = position{l.dir.next(l.read.sector), 0}
			continue
		}
		off := l.geo.slotOff(l.read.sector, l.read.slot)
		buf, err := l.dev.Read(off, l.geo.slotSize)
		if err != nil {
			return nil, l.medium("read", l.read.sector, l.read.slot, err)
		}
		switch classifySlot(buf) {
		case slotValid:
			l.read.slot++
			l.metrics.ObserveFetch(time.Since(start))
			return slotPayload(buf), nil
		case slotGarbage, slotDiscarded:
			l.read.slot++
		case slotEmpty:
			return nil, fmt.Errorf("%w: sector %d slot %d is empty before the write position",
				ErrCorruptRecord, l.read.sector, l.read.slot)
		}
	}
}

// Discard releases every record between the discard boundary and the read
// position: their slots are marked reclaimable on the medium and their
// sectors become eligible for erasure when the writer wraps onto them.
func (l *Log) Discard() error {
	if l.dir == nil || l.needScan {
		return ErrNeedScan
	}
	p := l.boundary
	for l.dir.linear(l.geo, p) < l.dir.linear(l.geo, l.read) {
		if p.slot == l.geo.slots {
			p = position{l.dir.next(p.sector), 0}
			continue
		}
		off := l.geo.slotOff(p.sector, p.slot)
		hdr, err := l.dev.Read(off, slotHeaderSize)
		if err != nil {
			return l.medium("read", p.sector, p.slot, err)
		}
		if readWord(hdr, slotReserveOff) == slotReserveMagic &&
			readWord(hdr, slotCommitOff) == slotCommitMagic &&
			readWord(hdr, slotDiscardOff) == erasedWord {
			if err := l.dev.Program(off+slotDiscardOff, encodeDiscard()); err != nil {
				l.needScan = true
				return l.medium("program", p.sector, p.slot, err)
			}
		}
		p.slot++
	}
	l.boundary = l.read
	return nil
}

// Rewind resets the read position to the discard boundary, re-exposing
// every record fetched but not yet discarded.
func (l *Log) Rewind() error {
	if l.dir == nil {
		return ErrNeedScan
	}
	l.read = l.boundary
	return nil
}

// Capacity returns the maximum number of records the ring can hold. One
// sector is always reserved as the write target and never counted.
func (l *Log) Capacity() int {
	return (l.geo.sectorCount - 1) * l.geo.slots
}

// EstimateCount returns the stored record count in O(1) from cursor
// positions alone, accurate to within one sector's slot count.
func (l *Log) EstimateCount() (int, error) {
	if l.dir == nil {
		return 0, ErrNeedScan
	}
	n := l.dir.linear(l.geo, l.write) - l.dir.linear(l.geo, l.boundary)
	if n < 0 {
		n = 0
	}
	return n, nil
}

// ExactCount walks every occupied sector and counts valid records
// precisely. O(n) in medium reads.
func (l *Log) ExactCount() (int, error) {
	if l.dir == nil {
		return 0, ErrNeedScan
	}
	count := 0
	cached := -1
	var sector []byte
	p := l.boundary
	for l.dir.linear(l.geo, p) < l.dir.linear(l.geo, l.write) {
		if p.slot == l.geo.slots {
			p = position{l.dir.next(p.sector), 0}
			continue
		}
		if cached != p.sector {
			buf, err := l.dev.Read(l.geo.sectorOff(p.sector), l.geo.sectorSize)
			if err != nil {
				return 0, l.medium("read", p.sector, -1, err)
			}
			sector = buf
			cached = p.sector
		}
		off := sectorHeaderSize + p.slot*l.geo.slotSize
		if classifySlot(sector[off:off+l.geo.slotSize]) == slotValid {
			count++
		}
		p.slot++
	}
	return count, nil
}
