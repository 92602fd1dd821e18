package lsm

import "errors"

var (
	// ErrEmptyKeyReserved is returned by Put and Get when called with an
	// empty key. The MemTable's head sentinel uses the empty key
	// internally; callers must not collide with it.
	ErrEmptyKeyReserved = errors.New("lsm: empty key is reserved")

	// ErrClosed is returned by any operation attempted after Close.
	ErrClosed = errors.New("lsm: engine is closed")

	// ErrTruncatedEntry is returned by a full-table scan that hits EOF
	// mid-record rather than at a clean entry boundary.
	ErrTruncatedEntry = errors.New("lsm: truncated entry in sstable")
)
