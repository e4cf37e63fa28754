package ring

import (
	"testing"

	"github.com/rzbill/ringlog/internal/blockdev"
)

func erasedSlot(recordSize int) []byte {
	b := make([]byte, slotHeaderSize+recordSize)
	for i := range b {
		b[i] = blockdev.Erased
	}
	return b
}

func writtenSlot(payload []byte) []byte {
	b := erasedSlot(len(payload))
	copy(b[slotReserveOff:], encodeReserve())
	copy(b[slotCommitOff:], encodeCommit(payload))
	return b
}

func TestClassifySlot(t *testing.T) {
	payload := []byte("0123456789abcdef")

	if got := classifySlot(erasedSlot(len(payload))); got != slotEmpty {
		t.Fatalf("erased slot classified %v, want empty", got)
	}

	if got := classifySlot(writtenSlot(payload)); got != slotValid {
		t.Fatalf("committed slot classified %v, want valid", got)
	}

	// Reserved but never committed: dead slot.
	reserved := erasedSlot(len(payload))
	copy(reserved[slotReserveOff:], encodeReserve())
	if got := classifySlot(reserved); got != slotGarbage {
		t.Fatalf("reserved-only slot classified %v, want garbage", got)
	}

	// Torn reserve word.
	torn := erasedSlot(len(payload))
	torn[0] = 0xA5
	if got := classifySlot(torn); got != slotGarbage {
		t.Fatalf("torn reserve classified %v, want garbage", got)
	}

	// Flipped payload bit fails the crc.
	corrupt := writtenSlot(payload)
	corrupt[slotHeaderSize] ^= 0x01
	if got := classifySlot(corrupt); got != slotGarbage {
		t.Fatalf("corrupt payload classified %v, want garbage", got)
	}

	// Discard marker releases the slot.
	discarded := writtenSlot(payload)
	copy(discarded[slotDiscardOff:], encodeDiscard())
	if got := classifySlot(discarded); got != slotDiscarded {
		t.Fatalf("discarded slot classified %v, want discarded", got)
	}

	// A torn discard program still counts as discarded: the release was
	// already decided when it started.
	halfDiscarded := writtenSlot(payload)
	halfDiscarded[slotDiscardOff] = 0x3C
	if got := classifySlot(halfDiscarded); got != slotDiscarded {
		t.Fatalf("half-discarded slot classified %v, want discarded", got)
	}
}

func TestScanSlotsFindsFillBoundary(t *testing.T) {
	dev := blockdev.NewMemDevice(testUnit, testUnits)
	g, err := computeGeometry(dev, testRecLen)
	if err != nil {
		t.Fatalf("geometry: %v", err)
	}

	sector := make([]byte, g.sectorSize)
	for i := range sector {
		sector[i] = blockdev.Erased
	}
	copy(sector, encodeSectorHeader(sectorHeader{Version: 0, Tag: testTag, RecordSize: uint32(g.recordSize)}))
	for slot := 0; slot < 3; slot++ {
		off := sectorHeaderSize + slot*g.slotSize
		copy(sector[off:], writtenSlot(record(slot)))
	}

	states, fill := scanSlots(sector, g)
	if fill != 3 {
		t.Fatalf("fill = %d, want 3", fill)
	}
	for i, want := range []slotState{slotValid, slotValid, slotValid, slotEmpty} {
		if states[i] != want {
			t.Fatalf("slot %d classified %v, want %v", i, states[i], want)
		}
	}

	// A torn slot does not hide the fill boundary behind it.
	off := sectorHeaderSize + 3*g.slotSize
	copy(sector[off:off+4], encodeReserve())
	states, fill = scanSlots(sector, g)
	if fill != 4 {
		t.Fatalf("fill with trailing garbage = %d, want 4", fill)
	}
	if states[3] != slotGarbage {
		t.Fatalf("slot 3 classified %v, want garbage", states[3])
	}
}
