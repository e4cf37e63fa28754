package ring

import (
	"testing"

	"github.com/rzbill/ringlog/internal/blockdev"
)

func TestSectorHeaderRoundTrip(t *testing.T) {
	in := sectorHeader{Version: 42, Tag: 0xCAFE, RecordSize: 16}
	b := encodeSectorHeader(in)
	if len(b) != encodedHeaderLen {
		t.Fatalf("encoded header is %d bytes, want %d", len(b), encodedHeaderLen)
	}
	out, ok := decodeSectorHeader(b)
	if !ok {
		t.Fatalf("decode rejected a fresh header")
	}
	if out != in {
		t.Fatalf("round trip: got %+v want %+v", out, in)
	}
}

func TestSectorHeaderRejectsDamage(t *testing.T) {
	b := encodeSectorHeader(sectorHeader{Version: 7, Tag: 1, RecordSize: 16})

	erased := make([]byte, encodedHeaderLen)
	for i := range erased {
		erased[i] = blockdev.Erased
	}
	if _, ok := decodeSectorHeader(erased); ok {
		t.Fatalf("decode accepted an erased header")
	}

	flipped := append([]byte(nil), b...)
	flipped[5] ^= 0x01 // damage the version field
	if _, ok := decodeSectorHeader(flipped); ok {
		t.Fatalf("decode accepted a header with a bad crc")
	}

	short := b[:encodedHeaderLen-1]
	if _, ok := decodeSectorHeader(short); ok {
		t.Fatalf("decode accepted a truncated header")
	}
}

func TestVersionLessHandlesWraparound(t *testing.T) {
	cases := []struct {
		a, b uint32
		want bool
	}{
		{0, 1, true},
		{1, 0, false},
		{5, 5, false},
		{0xFFFFFFFF, 0, true}, // wraps: max is older than zero
		{0, 0xFFFFFFFF, false},
		{0xFFFFFFFE, 0xFFFFFFFF, true},
		{0x7FFFFFFF, 0x80000000, true},
	}
	for _, c := range cases {
		if got := versionLess(c.a, c.b); got != c.want {
			t.Fatalf("versionLess(%#x, %#x) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
