package ring

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/rzbill/ringlog/internal/blockdev"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// SectorState describes one sector's position in its lifecycle.
type SectorState uint8

// Sector states
const (
	SectorEmpty SectorState = iota
	SectorActive
	SectorFull
)

func (s SectorState) String() string {
	switch s {
	case SectorEmpty:
		return "empty"
	case SectorActive:
		return "active"
	case SectorFull:
		return "full"
	default:
		return "unknown"
	}
}

// sectorHeaderSize is the space reserved at the start of each sector.
// The encoded header is shorter; the remainder stays erased.
const sectorHeaderSize = 32

const encodedHeaderLen = 20

const sectorMagic uint32 = 0x52494E47 // "RING"

type sectorHeader struct {
	Version    uint32
	Tag        uint32
	RecordSize uint32
}

// encodeSectorHeader renders the on-medium header: magic, version, tag,
// record size, CRC-32C over the first 16 bytes. All fields big-endian.
func encodeSectorHeader(h sectorHeader) []byte {
	b := make([]byte, encodedHeaderLen)
	binary.BigEndian.PutUint32(b[0:4], sectorMagic)
	binary.BigEndian.PutUint32(b[4:8], h.Version)
	binary.BigEndian.PutUint32(b[8:12], h.Tag)
	binary.BigEndian.PutUint32(b[12:16], h.RecordSize)
	binary.BigEndian.PutUint32(b[16:20], crc32.Checksum(b[:16], castagnoli))
	return b
}

// decodeSectorHeader parses the start of a sector buffer. ok is false for
// erased, torn or foreign headers.
func decodeSectorHeader(b []byte) (h sectorHeader, ok bool) {
	if len(b) < encodedHeaderLen {
		return sectorHeader{}, false
	}
	if binary.BigEndian.Uint32(b[0:4]) != sectorMagic {
		return sectorHeader{}, false
	}
	if binary.BigEndian.Uint32(b[16:20]) != crc32.Checksum(b[:16], castagnoli) {
		return sectorHeader{}, false
	}
	h.Version = binary.BigEndian.Uint32(b[4:8])
	h.Tag = binary.BigEndian.Uint32(b[8:12])
	h.RecordSize = binary.BigEndian.Uint32(b[12:16])
	return h, true
}

// versionLess orders sector versions with wraparound: a version lagging
// another by more than half the u32 space is the newer one.
func versionLess(a, b uint32) bool {
	return int32(a-b) < 0
}

func allErased(b []byte) bool {
	for _, c := range b {
		if c != blockdev.Erased {
			return false
		}
	}
	return true
}
