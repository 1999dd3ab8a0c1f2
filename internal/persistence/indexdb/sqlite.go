package indexdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// Build is one recorded planet build.
type Build struct {
	ID             int64  `json:"id"`
	Planet         string `json:"planet"`
	Namespace      string `json:"namespace"`
	Preset         string `json:"preset"`
	Seed           int64  `json:"seed"`
	SplinesDigest  string `json:"splines_digest"`
	TectonicDigest string `json:"tectonic_digest"`
	PackDigest     string `json:"pack_digest"`
	Noises         int    `json:"noises"`
	Biomes         int    `json:"biomes"`
	GapCells       int    `json:"gap_cells"`
	BundlePath     string `json:"bundle_path"`
	BuiltAt        string `json:"built_at"`
}

type SQLiteIndex struct {
	db     *sql.DB
	logger *log.Logger

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	// mu orders sends on ch against Close.
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

type req struct {
	build Build
	// flush is closed once every earlier request is committed.
	flush chan struct{}
}

type Stats struct {
	QueueDepth    int    `json:"queue_depth"`
	QueueCapacity int    `json:"queue_capacity"`
	DropTotal     uint64 `json:"drop_total"`
}

func OpenSQLite(path string, logger *log.Logger) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db:     db,
		logger: logger,
		ch:     make(chan req, 1024),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS builds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			planet TEXT NOT NULL,
			namespace TEXT NOT NULL,
			preset TEXT NOT NULL,
			seed INTEGER NOT NULL,
			splines_digest TEXT NOT NULL,
			tectonic_digest TEXT NOT NULL,
			pack_digest TEXT NOT NULL,
			noises INTEGER NOT NULL,
			biomes INTEGER NOT NULL,
			gap_cells INTEGER NOT NULL,
			bundle_path TEXT NOT NULL,
			built_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_builds_planet ON builds(planet, id);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordBuild queues a build row. The row is dropped if the writer falls
// behind; the bundle on disk remains the source of truth.
func (s *SQLiteIndex) RecordBuild(b Build) {
	if s == nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	if b.BuiltAt == "" {
		b.BuiltAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	select {
	case s.ch <- req{build: b}:
	default:
		s.dropped.Add(1)
	}
}

// Flush waits until every queued row is written.
func (s *SQLiteIndex) Flush(ctx context.Context) error {
	if s == nil {
		return nil
	}
	done := make(chan struct{})
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil
	}
	select {
	case s.ch <- req{flush: done}:
	case <-ctx.Done():
		s.mu.RUnlock()
		return ctx.Err()
	}
	s.mu.RUnlock()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:    len(s.ch),
		QueueCapacity: cap(s.ch),
		DropTotal:     s.dropped.Load(),
	}
}

const buildColumns = `id,planet,namespace,preset,seed,splines_digest,tectonic_digest,pack_digest,noises,biomes,gap_cells,bundle_path,built_at`

func scanBuild(row interface{ Scan(...any) error }) (Build, error) {
	var b Build
	err := row.Scan(&b.ID, &b.Planet, &b.Namespace, &b.Preset, &b.Seed,
		&b.SplinesDigest, &b.TectonicDigest, &b.PackDigest,
		&b.Noises, &b.Biomes, &b.GapCells, &b.BundlePath, &b.BuiltAt)
	return b, err
}

// LatestBuild returns the most recent build of a planet.
func (s *SQLiteIndex) LatestBuild(ctx context.Context, planet string) (Build, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+buildColumns+` FROM builds WHERE planet = ? ORDER BY id DESC LIMIT 1`, planet)
	b, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Build{}, false, nil
	}
	if err != nil {
		return Build{}, false, err
	}
	return b, true, nil
}

// Builds lists builds newest first. A limit <= 0 means 50.
func (s *SQLiteIndex) Builds(ctx context.Context, limit int) ([]Build, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+buildColumns+` FROM builds ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()
	insert, err := s.db.Prepare(`INSERT INTO builds(planet,namespace,preset,seed,splines_digest,tectonic_digest,pack_digest,noises,biomes,gap_cells,bundle_path,built_at) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		s.logger.Printf("indexdb: prepare: %v", err)
	}
	defer func() {
		if insert != nil {
			_ = insert.Close()
		}
	}()

	var (
		tx      *sql.Tx
		pending int
	)
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			s.logger.Printf("indexdb: commit %d build(s): %v", pending, err)
		}
		tx = nil
		pending = 0
	}

	for r := range s.ch {
		if r.flush != nil {
			commit()
			close(r.flush)
			continue
		}
		if insert == nil {
			continue
		}
		if tx == nil {
			txx, err := s.db.BeginTx(ctx, nil)
			if err != nil {
				s.logger.Printf("indexdb: begin: %v", err)
				continue
			}
			tx = txx
		}
		b := r.build
		if _, err := tx.Stmt(insert).Exec(b.Planet, b.Namespace, b.Preset, b.Seed,
			b.SplinesDigest, b.TectonicDigest, b.PackDigest,
			b.Noises, b.Biomes, b.GapCells, b.BundlePath, b.BuiltAt); err != nil {
			s.logger.Printf("indexdb: insert build %s: %v", b.Planet, err)
			commit()
			continue
		}
		pending++
		if len(s.ch) == 0 {
			commit()
		}
	}
	commit()
}
