// Package framestore keeps recorded raw radar frames in SQLite so that
// captures can be replayed through the heatmap pipeline offline.
package framestore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/radarize/internal/monitoring"
	"github.com/banshee-data/radarize/internal/radar"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a requested frame does not exist.
var ErrNotFound = errors.New("framestore: frame not found")

// Record is a stored frame plus its capture metadata.
type Record struct {
	ID         int64
	SessionID  string
	Seq        int
	CapturedAt time.Time
	Frame      *radar.Frame
}

// Session summarises the frames recorded under one session ID.
type Session struct {
	ID     string
	Frames int
	First  time.Time
	Last   time.Time
}

// Store is a SQLite-backed frame store.
type Store struct {
	db *sql.DB
}

// NewSessionID returns a fresh capture session identifier.
func NewSessionID() string { return uuid.NewString() }

// Open opens (creating if needed) the store at path and applies pending
// schema migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

// migrateUp runs all pending migrations. The migrate instance is not closed
// because that would close the shared database handle.
func (s *Store) migrateUp() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// SchemaVersion returns the applied migration version and dirty flag.
func (s *Store) SchemaVersion() (uint, bool, error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Logf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertFrame stores a frame and returns its ID. The frame must validate.
func (s *Store) InsertFrame(ctx context.Context, rec *Record) (int64, error) {
	return insertFrame(ctx, s.db, rec)
}

func insertFrame(ctx context.Context, ex execer, rec *Record) (int64, error) {
	f := rec.Frame
	if f == nil {
		return 0, errors.New("framestore: nil frame")
	}
	if err := f.Validate(); err != nil {
		return 0, fmt.Errorf("frame %s/%d: %w", rec.SessionID, rec.Seq, err)
	}

	rx, err := json.Marshal(f.Rx)
	if err != nil {
		return 0, err
	}
	tx, err := json.Marshal(f.Tx)
	if err != nil {
		return 0, err
	}
	bias, err := json.Marshal(f.RxPhaseBias)
	if err != nil {
		return 0, err
	}
	blob, err := encodeSamples(f.Data)
	if err != nil {
		return 0, fmt.Errorf("failed to encode samples: %w", err)
	}

	res, err := ex.ExecContext(ctx, `
		INSERT INTO radar_frames (
			session_id, seq, captured_unix_ns, platform, adc_output_fmt,
			chirps, rx_count, samples, rx_mask, tx_mask, rx_phase_bias, data_blob
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Seq, rec.CapturedAt.UnixNano(), f.Platform, f.ADCOutputFmt,
		f.Shape[0], f.Shape[1], f.Shape[2], string(rx), string(tx), string(bias), blob,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert frame %s/%d: %w", rec.SessionID, rec.Seq, err)
	}
	return res.LastInsertId()
}

// Import stores frames under a new session, numbering them from zero, and
// returns the session ID.
func (s *Store) Import(ctx context.Context, frames []*radar.Frame, capturedAt time.Time) (string, error) {
	session := NewSessionID()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	for i, f := range frames {
		rec := &Record{SessionID: session, Seq: i, CapturedAt: capturedAt, Frame: f}
		if _, err := insertFrame(ctx, tx, rec); err != nil {
			return "", err
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit import: %w", err)
	}
	monitoring.Logf("[framestore] imported %d frames as session %s", len(frames), session)
	return session, nil
}

const selectFrame = `
	SELECT frame_id, session_id, seq, captured_unix_ns, platform, adc_output_fmt,
	       chirps, rx_count, samples, rx_mask, tx_mask, rx_phase_bias, data_blob
	FROM radar_frames`

// Frame loads one frame by ID.
func (s *Store) Frame(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectFrame+` WHERE frame_id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return rec, err
}

// SessionFrames loads every frame of a session in sequence order.
func (s *Store) SessionFrames(ctx context.Context, session string) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, selectFrame+` WHERE session_id = ? ORDER BY seq`, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Sessions lists recorded sessions, oldest first.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, COUNT(*), MIN(captured_unix_ns), MAX(captured_unix_ns)
		FROM radar_frames
		GROUP BY session_id
		ORDER BY MIN(captured_unix_ns), session_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			sess        Session
			first, last int64
		)
		if err := rows.Scan(&sess.ID, &sess.Frames, &first, &last); err != nil {
			return nil, err
		}
		sess.First = time.Unix(0, first).UTC()
		sess.Last = time.Unix(0, last).UTC()
		out = append(out, sess)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec          Record
		f            radar.Frame
		capturedNs   int64
		rx, tx, bias string
		blob         []byte
	)
	if err := row.Scan(&rec.ID, &rec.SessionID, &rec.Seq, &capturedNs, &f.Platform, &f.ADCOutputFmt,
		&f.Shape[0], &f.Shape[1], &f.Shape[2], &rx, &tx, &bias, &blob); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(rx), &f.Rx); err != nil {
		return nil, fmt.Errorf("frame %d: bad rx mask: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(tx), &f.Tx); err != nil {
		return nil, fmt.Errorf("frame %d: bad tx mask: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(bias), &f.RxPhaseBias); err != nil {
		return nil, fmt.Errorf("frame %d: bad phase bias: %w", rec.ID, err)
	}
	data, err := decodeSamples(blob)
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", rec.ID, err)
	}
	f.Data = data
	rec.CapturedAt = time.Unix(0, capturedNs).UTC()
	rec.Frame = &f
	return &rec, nil
}
