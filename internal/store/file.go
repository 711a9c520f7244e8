package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// fileEntry is one line of the JSONL file.
type fileEntry struct {
	Kind         string              `json:"kind"`
	Emergency    *EmergencyRecord    `json:"emergency,omitempty"`
	Consultation *ConsultationRecord `json:"consultation,omitempty"`
}

// FileStore appends requests to a JSON-lines file.
type FileStore struct {
	path   string
	log    *zap.Logger
	mu     sync.Mutex
	lastID int64
}

func NewFileStore(opts ...Option) (*FileStore, error) {
	cfg := applyOpts(opts)
	if cfg.DSN == "" {
		return nil, fmt.Errorf("file path not set")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure store dir: %w", err)
	}
	f, err := os.OpenFile(cfg.DSN, os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to init store file: %w", err)
	}
	_ = f.Close()
	s := &FileStore{path: cfg.DSN, log: cfg.logger().With(zap.String("store", "file"))}
	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if id := e.id(); id > s.lastID {
			s.lastID = id
		}
	}
	return s, nil
}

func (e fileEntry) id() int64 {
	switch {
	case e.Emergency != nil:
		return e.Emergency.ID
	case e.Consultation != nil:
		return e.Consultation.ID
	}
	return 0
}

func (s *FileStore) AddEmergency(_ context.Context, r EmergencyRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.lastID + 1
	if err := s.appendUnlocked(fileEntry{Kind: KindEmergency, Emergency: &r}); err != nil {
		return 0, err
	}
	s.lastID = r.ID
	return r.ID, nil
}

func (s *FileStore) AddConsultation(_ context.Context, r ConsultationRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.lastID + 1
	if err := s.appendUnlocked(fileEntry{Kind: KindConsultation, Consultation: &r}); err != nil {
		return 0, err
	}
	s.lastID = r.ID
	return r.ID, nil
}

func (s *FileStore) appendUnlocked(e fileEntry) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open append: %w", err)
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			s.log.Warn("close store file", zap.Error(err))
		}
	}(f)
	if err := json.NewEncoder(f).Encode(e); err != nil {
		return fmt.Errorf("encode append: %w", err)
	}
	return nil
}

func (s *FileStore) Summaries(_ context.Context, from, to time.Time) ([]Summary, error) {
	s.mu.Lock()
	entries, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var out []Summary
	for _, e := range entries {
		var sm Summary
		switch {
		case e.Emergency != nil:
			r := e.Emergency
			sm = Summary{Kind: KindEmergency, Ref: r.Ref, UserID: r.UserID, Article: r.Article, CreatedAt: r.CreatedAt}
		case e.Consultation != nil:
			r := e.Consultation
			sm = Summary{Kind: KindConsultation, Ref: r.Ref, UserID: r.UserID, Article: r.Article, Urgency: r.Urgency, CreatedAt: r.CreatedAt}
		default:
			continue
		}
		if sm.CreatedAt.Before(from) || !sm.CreatedAt.Before(to) {
			continue
		}
		out = append(out, sm)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *FileStore) load() ([]fileEntry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open read: %w", err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	buf := make([]byte, 0, 1024*1024)
	sc.Buffer(buf, 10*1024*1024)
	var entries []fileEntry
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e fileEntry
		if err := json.Unmarshal(line, &e); err != nil {
			s.log.Warn("skipping malformed store line", zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return entries, nil
}

func (s *FileStore) Close() error { return nil }
