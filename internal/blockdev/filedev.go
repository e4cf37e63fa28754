package blockdev

import (
	"fmt"
	"os"
)

// FileDevice treats a regular file as a flash partition. It trusts the
// caller to honor the program-once discipline; the engine is the only
// writer and already does. New files are created pre-erased (all 0xFF).
type FileDevice struct {
	f        *os.File
	unitSize int
	size     int64
}

// OpenFileDevice opens (or creates) path as a device of size bytes with the
// given erase unit size. An existing file must already be exactly size
// bytes long.
func OpenFileDevice(path string, unitSize int, size int64) (*FileDevice, error) {
	if unitSize <= 0 || size <= 0 || size%int64(unitSize) != 0 {
		return nil, fmt.Errorf("filedev: size %d not a multiple of erase unit %d", size, unitSize)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if os.IsNotExist(err) {
		f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			return nil, err
		}
		if err := fillErased(f, size); err != nil {
			f.Close()
			return nil, err
		}
	} else if err != nil {
		return nil, err
	} else {
		st, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, err
		}
		if st.Size() != size {
			f.Close()
			return nil, fmt.Errorf("filedev: %s is %d bytes, want %d", path, st.Size(), size)
		}
	}
	return &FileDevice{f: f, unitSize: unitSize, size: size}, nil
}

func fillErased(f *os.File, size int64) error {
	buf := make([]byte, 64<<10)
	for i := range buf {
		buf[i] = Erased
	}
	var off int64
	for off < size {
		n := int64(len(buf))
		if size-off < n {
			n = size - off
		}
		if _, err := f.WriteAt(buf[:n], off); err != nil {
			return err
		}
		off += n
	}
	return f.Sync()
}

// EraseUnitSize implements Device.
func (d *FileDevice) EraseUnitSize() int { return d.unitSize }

// Size implements Device.
func (d *FileDevice) Size() int64 { return d.size }

// Erase implements Device.
func (d *FileDevice) Erase(off int64, length int) error {
	if off < 0 || off+int64(length) > d.size {
		return ErrOutOfRange
	}
	if off%int64(d.unitSize) != 0 || length%d.unitSize != 0 {
		return ErrUnaligned
	}
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = Erased
	}
	if _, err := d.f.WriteAt(buf, off); err != nil {
		return err
	}
	return d.f.Sync()
}

// Program implements Device.
func (d *FileDevice) Program(off int64, p []byte) error {
	if off < 0 || off+int64(len(p)) > d.size {
		return ErrOutOfRange
	}
	if _, err := d.f.WriteAt(p, off); err != nil {
		return err
	}
	return d.f.Sync()
}

// Read implements Device.
func (d *FileDevice) Read(off int64, length int) ([]byte, error) {
	if off < 0 || off+int64(length) > d.size {
		return nil, ErrOutOfRange
	}
	buf := make([]byte, length)
	if _, err := d.f.ReadAt(buf, off); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close syncs and closes the backing file.
func (d *FileDevice) Close() error {
	if err := d.f.Sync(); err != nil {
		d.f.Close()
		return err
	}
	return d.f.Close()
}
