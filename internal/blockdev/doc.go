// Package blockdev defines the block storage interface the ring engine
// writes to, plus two concrete drivers.
//
// # Overview
//
// A Device models erase-before-write storage (NOR/NAND flash or anything
// with the same discipline): Erase returns a whole erase unit to the
// all-ones state, Program flips bits from erased to written, and no byte
// may be programmed twice without an intervening erase. All addresses are
// partition-relative and 0-based.
//
// Drivers:
//   - MemDevice: in-memory flash simulator. It enforces the erase/program
//     contract strictly (programming a non-erased byte is an error), keeps
//     per-unit erase counters, and supports fault injection for power-loss
//     and dead-medium tests.
//   - FileDevice: a plain file treated as a flash partition, for the CLI
//     and diag server. Created files are initialized to the erased state.
//
// Example:
//
//	dev := blockdev.NewMemDevice(256, 4) // 4 erase units of 256 bytes
//	_ = dev.Erase(0, 256)
//	_ = dev.Program(0, []byte{0xDE, 0xAD})
//	b, _ := dev.Read(0, 2)
package blockdev
