// Package recording persists sensor frame sequences in SQLite so sessions can
// be replayed through the tracker.
package recording

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/bodytrack/internal/body"
	"github.com/banshee-data/bodytrack/internal/sensor"
	"github.com/banshee-data/bodytrack/internal/timeutil"
)

// ErrNotFound is returned when a recording does not exist.
var ErrNotFound = errors.New("recording not found")

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
	"PRAGMA foreign_keys=ON",
}

// Recording describes one stored frame sequence.
type Recording struct {
	ID         string    `json:"recording_id"`
	Name       string    `json:"name"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
	FrameCount int       `json:"frame_count"`
}

// Store is a SQLite-backed recording store.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Open opens or creates the database at path and migrates it to the latest
// schema.
func Open(path string) (*Store, error) {
	return OpenWithClock(path, timeutil.RealClock{})
}

// OpenWithClock is Open with an injected clock for creation timestamps.
func OpenWithClock(path string, clock timeutil.Clock) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", p, err)
		}
	}
	s := &Store{db: db, clock: clock}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// CreateRecording starts an empty recording.
func (s *Store) CreateRecording(ctx context.Context, name, source string) (Recording, error) {
	rec := Recording{
		ID:        uuid.NewString(),
		Name:      name,
		Source:    source,
		CreatedAt: s.clock.Now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recordings (recording_id, name, source, created_at_ns, frame_count) VALUES (?, ?, ?, ?, 0)`,
		rec.ID, rec.Name, rec.Source, rec.CreatedAt.UnixNano())
	if err != nil {
		return Recording{}, fmt.Errorf("create recording: %w", err)
	}
	return rec, nil
}

// AppendFrame stores f as the next frame of recording id. A nil frame is kept
// as an absent entry so replay reproduces sensor gaps.
func (s *Store) AppendFrame(ctx context.Context, id string, f *body.Frame) error {
	payload, err := sensor.EncodeFrame(f)
	if err != nil {
		return err
	}
	var seq uint64
	var ts int64
	absent := 1
	if f != nil {
		seq, absent = f.Seq, 0
		if !f.Timestamp.IsZero() {
			ts = f.Timestamp.UnixNano()
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var index int
	err = tx.QueryRowContext(ctx, `SELECT frame_count FROM recordings WHERE recording_id = ?`, id).Scan(&index)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("append to %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("append to %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO recording_frames (recording_id, frame_index, seq, timestamp_ns, absent, payload) VALUES (?, ?, ?, ?, ?, ?)`,
		id, index, int64(seq), ts, absent, string(payload)); err != nil {
		return fmt.Errorf("append to %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE recordings SET frame_count = frame_count + 1 WHERE recording_id = ?`, id); err != nil {
		return fmt.Errorf("append to %s: %w", id, err)
	}
	return tx.Commit()
}

// GetRecording returns the recording with the given id.
func (s *Store) GetRecording(ctx context.Context, id string) (Recording, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT recording_id, name, source, created_at_ns, frame_count FROM recordings WHERE recording_id = ?`, id)
	rec, err := scanRecording(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Recording{}, ErrNotFound
	}
	return rec, err
}

// ListRecordings returns all recordings, oldest first.
func (s *Store) ListRecordings(ctx context.Context) ([]Recording, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT recording_id, name, source, created_at_ns, frame_count FROM recordings ORDER BY created_at_ns, recording_id`)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	defer rows.Close()

	var out []Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecording(sc scanner) (Recording, error) {
	var rec Recording
	var createdNs int64
	if err := sc.Scan(&rec.ID, &rec.Name, &rec.Source, &createdNs, &rec.FrameCount); err != nil {
		return Recording{}, err
	}
	rec.CreatedAt = time.Unix(0, createdNs)
	return rec, nil
}

// LoadFrames returns the frames of recording id in append order. Absent
// entries come back as nil frames.
func (s *Store) LoadFrames(ctx context.Context, id string) ([]*body.Frame, error) {
	if _, err := s.GetRecording(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT frame_index, payload FROM recording_frames WHERE recording_id = ? ORDER BY frame_index`, id)
	if err != nil {
		return nil, fmt.Errorf("load frames of %s: %w", id, err)
	}
	defer rows.Close()

	var frames []*body.Frame
	for rows.Next() {
		var index int
		var payload string
		if err := rows.Scan(&index, &payload); err != nil {
			return nil, err
		}
		f, err := sensor.DecodeFrame([]byte(payload))
		if err != nil {
			return nil, fmt.Errorf("recording %s frame %d: %w", id, index, err)
		}
		frames = append(frames, f)
	}
	return frames, rows.Err()
}

// DeleteRecording removes a recording and its frames.
func (s *Store) DeleteRecording(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recording_frames WHERE recording_id = ?`, id); err != nil {
		return fmt.Errorf("delete frames of %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM recordings WHERE recording_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recording %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// Replay loads recording id into a scripted feed.
func (s *Store) Replay(ctx context.Context, id string) (*sensor.Scripted, error) {
	frames, err := s.LoadFrames(ctx, id)
	if err != nil {
		return nil, err
	}
	return sensor.NewScripted(frames...), nil
}
