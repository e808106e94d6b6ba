package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/amishk599/studypack/internal/model"
)

// Ensure SQLiteStore implements model.PackStore.
var _ model.PackStore = (*SQLiteStore)(nil)

// SQLiteStore archives study packs in a SQLite database. The content hash
// column doubles as the inbox dedup index.
type SQLiteStore struct {
	db *sql.DB
}

var schema = []string{`CREATE TABLE IF NOT EXISTS packs (
	id                  TEXT PRIMARY KEY,
	source              TEXT NOT NULL,
	content_hash        TEXT NOT NULL,
	created_at          INTEGER NOT NULL,
	concepts            TEXT NOT NULL,
	concepts_error      INTEGER NOT NULL DEFAULT 0,
	roadmap             TEXT NOT NULL,
	roadmap_error       INTEGER NOT NULL DEFAULT 0,
	summary             TEXT NOT NULL,
	summary_error       INTEGER NOT NULL DEFAULT 0,
	visualization       TEXT NOT NULL,
	visualization_error INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS packs_content_hash ON packs (content_hash)`,
	`CREATE INDEX IF NOT EXISTS packs_created_at ON packs (created_at)`,
}

const selectColumns = `id, source, content_hash, created_at,
	concepts, concepts_error, roadmap, roadmap_error,
	summary, summary_error, visualization, visualization_error`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// packs table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating packs table: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Save archives rec, assigning an ID and creation time when they are unset.
func (s *SQLiteStore) Save(rec model.PackRecord) (model.PackRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	args := []any{rec.ID, rec.Source, rec.ContentHash, rec.CreatedAt.UnixMilli()}
	for _, key := range model.Sections {
		o, _ := rec.Pack.Section(key)
		text, kind := encodeOutcome(o)
		args = append(args, text, kind)
	}

	_, err := s.db.Exec(`INSERT INTO packs (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return model.PackRecord{}, fmt.Errorf("saving pack for %s: %w", rec.Source, err)
	}
	return rec, nil
}

// Get returns the pack with the given ID, or model.ErrPackNotFound.
func (s *SQLiteStore) Get(id string) (model.PackRecord, error) {
	row := s.db.QueryRow(`SELECT `+selectColumns+` FROM packs WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PackRecord{}, fmt.Errorf("pack %s: %w", id, model.ErrPackNotFound)
	}
	if err != nil {
		return model.PackRecord{}, fmt.Errorf("loading pack %s: %w", id, err)
	}
	return rec, nil
}

// List returns the most recent packs first. A limit <= 0 returns all of them.
func (s *SQLiteStore) List(limit int) ([]model.PackRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`SELECT `+selectColumns+` FROM packs
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing packs: %w", err)
	}
	defer rows.Close()

	var out []model.PackRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pack: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing packs: %w", err)
	}
	return out, nil
}

// HasProcessed returns true if a pack was already built from text with this hash.
func (s *SQLiteStore) HasProcessed(contentHash string) (bool, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM packs WHERE content_hash = ? LIMIT 1", contentHash).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking processed status for %s: %w", contentHash, err)
	}
	return true, nil
}

// Cleanup deletes packs older than the given duration.
func (s *SQLiteStore) Cleanup(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan).UnixMilli()
	_, err := s.db.Exec("DELETE FROM packs WHERE created_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up packs older than %v: %w", olderThan, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (model.PackRecord, error) {
	var (
		rec     model.PackRecord
		created int64
		texts   [4]string
		kinds   [4]int
	)
	err := sc.Scan(&rec.ID, &rec.Source, &rec.ContentHash, &created,
		&texts[0], &kinds[0], &texts[1], &kinds[1],
		&texts[2], &kinds[2], &texts[3], &kinds[3])
	if err != nil {
		return model.PackRecord{}, err
	}
	rec.CreatedAt = time.UnixMilli(created).UTC()
	rec.Pack = model.StudyPack{
		Concepts:      decodeOutcome(texts[0], kinds[0]),
		Roadmap:       decodeOutcome(texts[1], kinds[1]),
		Summary:       decodeOutcome(texts[2], kinds[2]),
		Visualization: decodeOutcome(texts[3], kinds[3]),
	}
	return rec, nil
}

// encodeOutcome flattens an outcome to its text and error kind; kind 0 is success.
func encodeOutcome(o model.Outcome) (string, int) {
	if o.Failed() {
		return o.Err.Message, int(o.Err.Kind)
	}
	return o.Text, 0
}

func decodeOutcome(text string, kind int) model.Outcome {
	if kind == 0 {
		return model.Success(text)
	}
	return model.Failure(&model.StageError{Kind: model.ErrorKind(kind), Message: text})
}
