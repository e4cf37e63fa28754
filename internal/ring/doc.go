// Package ring implements ringlog's wear-leveling append log for
// fixed-size records on erase-before-write block storage.
//
// # Overview
//
// The whole partition is used as a circular buffer of sectors (one sector
// per erase unit), so erase cycles spread evenly across the medium. Each
// sector carries a small header and a run of fixed-size record slots:
//
//	sector:  header(32B reserved) | slot | slot | ...
//	header:  magic(4) version(4) tag(4) recSize(4) crc32c(4)
//	slot:    reserve(4) discard(4) commit(4) crc32c(4) payload(recSize)
//
// Every field is programmed exactly once between erasures. Append programs
// the reserve word, then commit+crc+payload in a second call; Discard
// programs the discard word. Scan reconstructs sector order from the
// wraparound-compared version numbers and slot validity from the markers
// alone, so recovery after power loss needs no journal.
//
// API surface (internal)
//
//	l, _ := ring.New(dev, ring.Options{Tag: 0xCAFE, RecordSize: 16})
//	_ = l.Format()            // or l.Scan() to recover existing data
//	_ = l.Append(record)      // evicts the oldest sector when the ring wraps
//	rec, err := l.Fetch()     // oldest-first; ErrNoMoreRecords when caught up
//	_ = l.Discard()           // release everything fetched so far
//	_ = l.Rewind()            // replay fetched-but-undiscarded records
//
// The log is single-writer/single-reader; callers serialize access.
package ring
