package recording

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/bodytrack/internal/body"
	"github.com/banshee-data/bodytrack/internal/monitoring"
	"github.com/banshee-data/bodytrack/internal/sensor"
	"github.com/banshee-data/bodytrack/internal/timeutil"
)

func openTestStore(t *testing.T) (*Store, *timeutil.MockClock) {
	t.Helper()
	monitoring.SetLogger(t.Logf)
	t.Cleanup(func() { monitoring.SetLogger(nil) })

	clock := timeutil.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s, err := OpenWithClock(filepath.Join(t.TempDir(), "recordings.db"), clock)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, clock
}

func frame(seq uint64, ids ...uint64) *body.Frame {
	f := &body.Frame{Seq: seq, Timestamp: time.Unix(1000, int64(seq)*33_000_000).UTC()}
	for _, id := range ids {
		f.Bodies = append(f.Bodies, &body.RawPose{
			ID:      id,
			Tracked: true,
			Joints:  map[body.JointKind]body.Joint{body.HandLeft: {Position: body.Vec3{X: float64(seq), Y: 1, Z: 2}}},
		})
	}
	return f
}

func TestOpen_MigratesToLatest(t *testing.T) {
	s, _ := openTestStore(t)
	version, dirty, err := s.MigrateVersion()
	require.NoError(t, err)
	assert.EqualValues(t, LatestVersion, version)
	assert.False(t, dirty)

	var journal string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&journal))
	assert.Equal(t, "wal", journal)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "again.db")
	s, err := Open(path)
	require.NoError(t, err)
	rec, err := s.CreateRecording(context.Background(), "first", "synthetic")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetRecording(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)
}

func TestMigrateDown(t *testing.T) {
	s, _ := openTestStore(t)
	require.NoError(t, s.MigrateDown())
	version, _, err := s.MigrateVersion()
	require.NoError(t, err)
	assert.EqualValues(t, 1, version)
	require.NoError(t, s.MigrateUp())
	version, _, err = s.MigrateVersion()
	require.NoError(t, err)
	assert.EqualValues(t, LatestVersion, version)
}

func TestCreateAndList(t *testing.T) {
	s, clock := openTestStore(t)
	ctx := context.Background()

	a, err := s.CreateRecording(ctx, "morning", "synthetic")
	require.NoError(t, err)
	clock.Advance(time.Minute)
	b, err := s.CreateRecording(ctx, "evening", "serial")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	list, err := s.ListRecordings(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, "serial", list[1].Source)
	assert.True(t, list[1].CreatedAt.Equal(clock.Now()))
	assert.Zero(t, list[0].FrameCount)
}

func TestAppendAndLoad(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	rec, err := s.CreateRecording(ctx, "walk", "synthetic")
	require.NoError(t, err)

	in := []*body.Frame{frame(1, 4), nil, frame(3, 4, 5), frame(4)}
	for _, f := range in {
		require.NoError(t, s.AppendFrame(ctx, rec.ID, f))
	}

	got, err := s.GetRecording(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.FrameCount)

	out, err := s.LoadFrames(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, out, 4)
	assert.Nil(t, out[1], "absent frames replay as nil")
	assert.EqualValues(t, 3, out[2].Seq)
	require.Len(t, out[2].Bodies, 2)
	assert.EqualValues(t, 5, out[2].Bodies[1].ID)
	assert.InDelta(t, 3.0, out[2].Bodies[0].Joints[body.HandLeft].Position.X, 1e-12)
	assert.True(t, out[0].Timestamp.Equal(in[0].Timestamp))
	require.NotNil(t, out[3])
	assert.Empty(t, out[3].Bodies)
}

func TestNotFound(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	_, err := s.GetRecording(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.LoadFrames(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.AppendFrame(ctx, "missing", frame(1)), ErrNotFound)
	assert.ErrorIs(t, s.DeleteRecording(ctx, "missing"), ErrNotFound)
	_, err = s.Replay(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRecording(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	rec, err := s.CreateRecording(ctx, "gone", "")
	require.NoError(t, err)
	require.NoError(t, s.AppendFrame(ctx, rec.ID, frame(1, 2)))

	require.NoError(t, s.DeleteRecording(ctx, rec.ID))
	_, err = s.GetRecording(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM recording_frames`).Scan(&n))
	assert.Zero(t, n)
}

func TestRecorderAndReplay(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	rec, err := s.CreateRecording(ctx, "session", "scripted")
	require.NoError(t, err)

	src := sensor.NewScripted(frame(1, 7), frame(2, 7), nil, frame(4))
	r := NewRecorder(ctx, s, rec.ID, src)
	assert.Equal(t, rec.ID, r.RecordingID())

	live := body.NewTracker(body.DefaultTrackerConfig())
	for i := 0; i < 4; i++ {
		live.Update(r.Next())
	}
	assert.EqualValues(t, 4, r.Written())
	assert.Zero(t, r.Failed())

	feed, err := s.Replay(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, feed.Remaining())

	replayed := body.NewTracker(body.DefaultTrackerConfig())
	for !feed.Done() {
		replayed.Update(feed.Next())
	}
	assert.Equal(t, live.Stats(), replayed.Stats())
}

func TestRecorder_StorageFailureDoesNotStopFeed(t *testing.T) {
	s, _ := openTestStore(t)
	f := frame(1, 3)
	r := NewRecorder(context.Background(), s, "no-such-recording", sensor.NewScripted(f, f))

	assert.Same(t, f, r.Next())
	assert.Same(t, f, r.Next())
	assert.EqualValues(t, 2, r.Failed())
	assert.Zero(t, r.Written())
}
