package blockdev

import (
	"bytes"
	"path/filepath"
	"testing"
)

func newTestFileDevice(t *testing.T) (*FileDevice, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ring.img")
	d, err := OpenFileDevice(path, 256, 1024)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d, path
}

func TestFileDeviceCreatesErased(t *testing.T) {
	d, _ := newTestFileDevice(t)
	b, err := d.Read(0, 16)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, c := range b {
		if c != Erased {
			t.Fatalf("new file device not erased: %x", b)
		}
	}
}

func TestFileDevicePersistsAcrossReopen(t *testing.T) {
	d, path := newTestFileDevice(t)
	if err := d.Program(300, []byte("hello")); err != nil {
		t.Fatalf("program: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	d2, err := OpenFileDevice(path, 256, 1024)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = d2.Close() })
	b, err := d2.Read(300, 5)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(b, []byte("hello")) {
		t.Fatalf("read back %q", b)
	}
}

func TestFileDeviceEraseResetsUnit(t *testing.T) {
	d, _ := newTestFileDevice(t)
	if err := d.Program(256, []byte{1, 2, 3}); err != nil {
		t.Fatalf("program: %v", err)
	}
	if err := d.Erase(256, 256); err != nil {
		t.Fatalf("erase: %v", err)
	}
	b, err := d.Read(256, 3)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(b, []byte{Erased, Erased, Erased}) {
		t.Fatalf("erase left %x", b)
	}
}

func TestFileDeviceRejectsGeometryMismatch(t *testing.T) {
	_, path := newTestFileDevice(t)
	if _, err := OpenFileDevice(path, 256, 2048); err == nil {
		t.Fatalf("expected size mismatch error")
	}
	if _, err := OpenFileDevice(filepath.Join(t.TempDir(), "x.img"), 256, 100); err == nil {
		t.Fatalf("expected unaligned size error")
	}
}
