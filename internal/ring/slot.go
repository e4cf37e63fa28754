package ring

import (
	"encoding/binary"
	"hash/crc32"
)

// slotHeaderSize precedes every payload. The three marker words live at
// distinct offsets so each lifecycle step programs fresh bytes:
//
//	+0  reserve  programmed first by Append
//	+4  discard  programmed by Discard when the record is released
//	+8  commit   programmed with crc+payload as one contiguous write
//	+12 crc      CRC-32C of the payload
const slotHeaderSize = 16

const (
	slotReserveOff = 0
	slotDiscardOff = 4
	slotCommitOff  = 8
)

const (
	slotReserveMagic uint32 = 0xA5A5A5A5
	slotCommitMagic  uint32 = 0xC3C3C3C3
	slotDiscardMagic uint32 = 0x3C3C3C3C
	erasedWord       uint32 = 0xFFFFFFFF
)

type slotState uint8

const (
	slotEmpty slotState = iota
	slotGarbage
	slotValid
	slotDiscarded
)

func (s slotState) String() string {
	switch s {
	case slotEmpty:
		return "empty"
	case slotGarbage:
		return "garbage"
	case slotValid:
		return "valid"
	case slotDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// classifySlot decides a slot's state from its full on-medium bytes.
// Anything torn by power loss ends up as garbage; garbage slots are dead
// and skipped by fetch and counting.
func classifySlot(b []byte) slotState {
	reserve := binary.BigEndian.Uint32(b[slotReserveOff : slotReserveOff+4])
	if reserve == erasedWord {
		if allErased(b) {
			return slotEmpty
		}
		return slotGarbage
	}
	if reserve != slotReserveMagic {
		return slotGarbage
	}
	if binary.BigEndian.Uint32(b[slotCommitOff:slotCommitOff+4]) != slotCommitMagic {
		return slotGarbage
	}
	crc := binary.BigEndian.Uint32(b[12:16])
	if crc32.Checksum(b[slotHeaderSize:], castagnoli) != crc {
		return slotGarbage
	}
	if binary.BigEndian.Uint32(b[slotDiscardOff:slotDiscardOff+4]) != erasedWord {
		return slotDiscarded
	}
	return slotValid
}

// encodeReserve is the first program of an append: it claims the slot.
func encodeReserve() []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, slotReserveMagic)
	return b
}

// encodeCommit is the second program: commit marker, payload CRC and the
// payload itself as one contiguous range starting at slotCommitOff.
func encodeCommit(payload []byte) []byte {
	b := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint32(b[0:4], slotCommitMagic)
	binary.BigEndian.PutUint32(b[4:8], crc32.Checksum(payload, castagnoli))
	copy(b[8:], payload)
	return b
}

// encodeDiscard releases a slot.
func encodeDiscard() []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, slotDiscardMagic)
	return b
}

func slotPayload(b []byte) []byte {
	return b[slotHeaderSize:]
}

func readWord(b []byte, off int) uint32 {
	return binary.BigEndian.Uint32(b[off : off+4])
}

// scanSlots classifies every slot of a sector buffer and returns the fill
// boundary: the index of the first empty slot, or the slot count when the
// sector is full. Slots past a torn write are still walked; the writer only
// ever resumes at the first empty slot.
func scanSlots(sector []byte, g geometry) (states []slotState, fill int) {
	states = make([]slotState, g.slots)
	fill = g.slots
	for i := 0; i < g.slots; i++ {
		off := sectorHeaderSize + i*g.slotSize
		states[i] = classifySlot(sector[off : off+g.slotSize])
		if states[i] == slotEmpty && fill == g.slots {
			fill = i
		}
	}
	return states, fill
}
