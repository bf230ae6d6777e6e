package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"chorebot/pkg/logx"
)

// compactEvery is how many dedup journal appends trigger a compaction into
// the dedup snapshot.
const compactEvery = 500

// fileStore keeps the household in one snapshot file and dedup windows in a
// journal beside it:
//
//	<path>                       state snapshot (json or cbor)
//	<prefix>.dedup.json          dedup snapshot
//	<prefix>.dedup.journal.jsonl dedup appends since the last compaction
type fileStore struct {
	log   logx.Logger
	codec codec

	mu sync.Mutex

	statePath     string
	dedupSnapPath string
	journal       *os.File
	dedup         map[string]int64 // unix milli
	journalWrites int
}

type dedupRecord struct {
	Key   string `json:"key"`
	Until int64  `json:"until"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage: path is required for the file driver")
	}
	c, err := codecFor(cfg.Format)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	prefix := strings.TrimSuffix(path, filepath.Ext(path))
	snapPath := prefix + ".dedup.json"
	journalPath := prefix + ".dedup.journal.jsonl"

	dedup := map[string]int64{}
	if err := loadDedupSnapshot(snapPath, dedup); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("dedup snapshot unreadable; starting empty", logx.String("path", snapPath), logx.Err(err))
	}
	if err := replayDedupJournal(journalPath, dedup); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("dedup journal unreadable", logx.String("path", journalPath), logx.Err(err))
	}
	pruneExpired(dedup, time.Now())

	jf, err := os.OpenFile(journalPath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("storage: open dedup journal: %w", err)
	}

	return &fileStore{
		log:           log,
		codec:         c,
		statePath:     path,
		dedupSnapPath: snapPath,
		journal:       jf,
		dedup:         dedup,
	}, nil
}

func (s *fileStore) Load(ctx context.Context) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.statePath)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && len(b) == 0) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("storage: load: %w", err)
	}
	var st State
	if err := s.codec.Unmarshal(b, &st); err != nil {
		return State{}, fmt.Errorf("storage: decode %s: %w", s.codec.Name(), err)
	}
	return st, nil
}

func (s *fileStore) Save(ctx context.Context, st State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := s.codec.Marshal(st)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", s.codec.Name(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journal == nil {
		return ErrClosed
	}
	if err := writeAtomic(s.statePath, b); err != nil {
		return fmt.Errorf("storage: save: %w", err)
	}
	return nil
}

func (s *fileStore) PutDedup(_ context.Context, key string, until time.Time) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	ms := until.UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journal == nil {
		return ErrClosed
	}
	s.dedup[key] = ms
	if err := json.NewEncoder(s.journal).Encode(dedupRecord{Key: key, Until: ms}); err != nil {
		return fmt.Errorf("storage: dedup journal: %w", err)
	}
	s.journalWrites++
	if s.journalWrites%compactEvery == 0 {
		if err := s.compactLocked(); err != nil {
			s.log.Debug("dedup compaction failed", logx.Err(err))
		}
	}
	return nil
}

func (s *fileStore) GetDedup(_ context.Context, key string) (time.Time, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return time.Time{}, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ms, ok := s.dedup[key]
	if !ok {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journal == nil {
		return nil
	}
	err := s.compactLocked()
	if cerr := s.journal.Close(); err == nil {
		err = cerr
	}
	s.journal = nil
	return err
}

// compactLocked folds the journal into the dedup snapshot and truncates it.
func (s *fileStore) compactLocked() error {
	pruneExpired(s.dedup, time.Now())
	b, err := json.Marshal(s.dedup)
	if err != nil {
		return err
	}
	if err := writeAtomic(s.dedupSnapPath, b); err != nil {
		return err
	}
	if err := s.journal.Truncate(0); err != nil {
		return err
	}
	_, err = s.journal.Seek(0, 0)
	return err
}

// writeAtomic replaces path with b via a synced temp file and rename.
func writeAtomic(path string, b []byte) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func loadDedupSnapshot(path string, out map[string]int64) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var m map[string]int64
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	for k, v := range m {
		out[k] = v
	}
	return nil
}

func replayDedupJournal(path string, out map[string]int64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r dedupRecord
		if json.Unmarshal(sc.Bytes(), &r) != nil || r.Key == "" {
			continue
		}
		out[r.Key] = r.Until
	}
	return sc.Err()
}

func pruneExpired(m map[string]int64, now time.Time) {
	cutoff := now.UnixMilli()
	for k, v := range m {
		if v < cutoff {
			delete(m, k)
		}
	}
}
