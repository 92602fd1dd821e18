package lsm

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

// LSMTree is the controller that owns the active MemTable and the
// MAX_LEVEL level lists, routes Put/Get, and drives flush/compaction. A
// tree is single-threaded and synchronous: callers must serialize all
// access to one instance themselves (see SPEC_FULL.md §5).
type LSMTree struct {
	cfg EngineConfig

	dataDir        string
	memtable       *MemTable
	levels         [][]*SSTable
	levelSizes     []int
	sstableCounter int
	clock          int64 // monotonic logical timestamp, bumped once per flush

	metrics  *Metrics
	engineID uuid.UUID

	closed bool
}

// Open creates (or re-opens an empty) engine rooted at cfg.DataDir. This
// implementation does not recover pre-existing SSTables on disk — crash
// recovery is an explicit non-goal (§1) — so Open always starts from a
// fresh MemTable and empty levels, regardless of files already present in
// DataDir.
func Open(cfg EngineConfig) (*LSMTree, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("lsm: invalid config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("lsm: create data dir %s: %w", cfg.DataDir, err)
	}

	t := &LSMTree{
		cfg:        cfg,
		dataDir:    cfg.DataDir,
		memtable:   NewMemTable(cfg.memtableSeed()),
		levels:     make([][]*SSTable, cfg.MaxLevel),
		levelSizes: make([]int, cfg.MaxLevel),
		metrics:    cfg.Metrics,
		engineID:   uuid.New(),
	}
	if t.metrics != nil {
		t.metrics.observeEngineOpened(t.engineID)
	}
	return t, nil
}

// EngineID returns the random identifier stamped on this engine instance at
// Open. It is never persisted and has no effect on stored data; it exists
// only so operators can tell concurrently open engines apart in the lsmctl
// inspector and the lsmdemo output. Metrics does not record it.
func (t *LSMTree) EngineID() uuid.UUID {
	return t.engineID
}

// Put inserts or replaces the value for key.
func (t *LSMTree) Put(key, value []byte) error {
	if t.closed {
		return ErrClosed
	}
	if len(key) == 0 {
		return ErrEmptyKeyReserved
	}

	t.memtable.Put(key, value)
	if t.metrics != nil {
		t.metrics.observePut(len(key), len(value))
	}

	if t.memtable.Size() >= t.cfg.MaxMemtableSize {
		return t.flush()
	}
	return nil
}

// Get looks up key, checking the MemTable first and then levels 0..N-1 in
// ascending order, newest SSTable first within each level. The returned
// slice is an independent copy safe for the caller to retain or mutate.
func (t *LSMTree) Get(key []byte) ([]byte, bool, error) {
	if t.closed {
		return nil, false, ErrClosed
	}
	if len(key) == 0 {
		return nil, false, ErrEmptyKeyReserved
	}
	if t.metrics != nil {
		t.metrics.observeGet()
	}

	if v, ok := t.memtable.Get(key); ok {
		return v, true, nil
	}

	for level := 0; level < len(t.levels); level++ {
		tables := t.levels[level]
		for i := len(tables) - 1; i >= 0; i-- {
			v, ok, err := tables[i].Get(key)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return v, true, nil
			}
		}
	}
	return nil, false, nil
}

// flush synthesizes L0_sstable_{counter}.db, writes the current MemTable to
// it in ascending key order with a shared flush timestamp, appends it to the
// end of level 0 (the newest position, scanned first by Get), and starts a
// fresh MemTable. If level 0 then holds
// at least L0CompactionTrigger entries, compaction runs inline.
func (t *LSMTree) flush() error {
	if t.memtable.Size() == 0 {
		return nil
	}

	t.clock++
	entries := t.memtable.OrderedEnumerate(t.clock)

	path := filepath.Join(t.dataDir, fmt.Sprintf("L0_sstable_%d.db", t.sstableCounter))
	sst, err := NewSSTable(path)
	if err != nil {
		return err
	}
	if err := sst.Write(entries); err != nil {
		_ = sst.Close()
		return err
	}

	t.levels[0] = append(t.levels[0], sst)
	t.levelSizes[0] += len(entries)
	t.memtable = NewMemTable(t.cfg.memtableSeed())
	t.sstableCounter++

	if t.metrics != nil {
		t.metrics.observeFlush(t.levelSizes)
	}

	if t.levelSizes[0] >= t.cfg.L0CompactionTrigger {
		return t.Compact()
	}
	return nil
}

// Compact runs the cascading compaction sweep: for level 0..MAX_LEVEL-2, if
// level i has reached LEVEL_SIZE_MULTIPLIER^(i+1) entries, merge it into
// level i+1 and continue to the next level (merging may have pushed level
// i+1 past its own threshold); stop at the first level under threshold.
func (t *LSMTree) Compact() error {
	if t.closed {
		return ErrClosed
	}
	for level := 0; level < len(t.levels)-1; level++ {
		threshold := levelThreshold(level, t.cfg.LevelSizeMultiplier)
		if t.levelSizes[level] < threshold {
			break
		}
		if err := t.mergeLevel(level); err != nil {
			return err
		}
	}
	return nil
}

// ForceCompaction is an administrative entry point, primarily for tests,
// that bypasses the size threshold and merges level directly into the next
// level. It first flushes a non-empty MemTable so the merge sees the
// latest writes.
func (t *LSMTree) ForceCompaction(level int) error {
	if t.closed {
		return ErrClosed
	}
	if level >= len(t.levels)-1 {
		return fmt.Errorf("lsm: cannot force-compact level %d: no level above MAX_LEVEL-1", level)
	}
	if t.memtable.Size() > 0 {
		if err := t.flush(); err != nil {
			return err
		}
	}
	if len(t.levels[level]) == 0 {
		return nil
	}
	return t.mergeLevel(level)
}

// mergeLevel merges every SSTable in levels[level] and levels[next] into a
// single new SSTable at levels[next], deduplicating keys (the freshest
// timestamp wins) and replacing level `next`'s recorded size with the
// number of entries actually written.
func (t *LSMTree) mergeLevel(level int) error {
	next := level + 1
	if next >= len(t.levels) {
		return nil
	}

	sources := slices.Concat(t.levels[level], t.levels[next])

	var all []*Entry
	for _, src := range sources {
		entries, err := src.ReadAllEntries()
		if err != nil {
			return fmt.Errorf("lsm: merge level %d: %w", level, err)
		}
		all = append(all, entries...)
	}

	slices.SortFunc(all, entryCompare)

	deduped := dedupeSorted(all)

	path := filepath.Join(t.dataDir, fmt.Sprintf("L%d_merged_%d.db", next, t.sstableCounter))
	dest, err := NewSSTable(path)
	if err != nil {
		return fmt.Errorf("lsm: merge level %d: %w", level, err)
	}
	if err := dest.Write(deduped); err != nil {
		_ = dest.Close()
		_ = os.Remove(path)
		return fmt.Errorf("lsm: merge level %d: %w", level, err)
	}

	t.levels[next] = append(t.levels[next], dest)
	t.levelSizes[next] = len(deduped)

	for _, old := range t.levels[level] {
		if err := old.Close(); err != nil {
			log.Printf("lsm: closing stale sstable %s after merge: %v", old.path, err)
		}
	}
	t.levels[level] = nil
	t.levelSizes[level] = 0
	t.sstableCounter++

	if t.metrics != nil {
		t.metrics.observeCompaction(level, t.levelSizes)
	}
	return nil
}

// dedupeSorted keeps the first entry of each run of equal keys in a slice
// already sorted by (key asc, timestamp desc) — i.e. the freshest copy.
func dedupeSorted(entries []*Entry) []*Entry {
	if len(entries) == 0 {
		return entries
	}
	out := make([]*Entry, 0, len(entries))
	out = append(out, entries[0])
	for _, e := range entries[1:] {
		if string(e.Key) != string(out[len(out)-1].Key) {
			out = append(out, e)
		}
	}
	return out
}

// LevelSize returns the recorded entry count for level i (0-indexed).
func (t *LSMTree) LevelSize(i int) int {
	return t.levelSizes[i]
}

// LevelState classifies level i for inspection tooling.
func (t *LSMTree) LevelState(i int) levelState {
	return describeLevel(i, t.levelSizes[i], t.cfg.LevelSizeMultiplier)
}

// Levels returns the number of levels the tree maintains.
func (t *LSMTree) Levels() int {
	return len(t.levels)
}

// MemtableSize returns the number of distinct keys in the active MemTable.
func (t *LSMTree) MemtableSize() int {
	return t.memtable.Size()
}

// Close closes every open SSTable file handle. It does not flush the active
// MemTable (no crash-recovery/durability guarantees are made, per §1) and
// does not remove any file from disk (file cleanup is the caller's
// responsibility, per §6).
func (t *LSMTree) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true

	var firstErr error
	for _, level := range t.levels {
		for _, sst := range level {
			if err := sst.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
