package body

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type recordState struct {
	ID      uint64
	Enabled bool
	Head    Vec3
	Missed  int
}

func snapshot(t *Tracker) []recordState {
	out := make([]recordState, 0, t.Len())
	for _, id := range t.order {
		r := t.records[id]
		out = append(out, recordState{ID: id, Enabled: r.Enabled(), Head: r.Position(Head), Missed: r.MissedFrames()})
	}
	slices.SortFunc(out, func(a, b recordState) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Reconciled state depends only on the set of live identities, not on the
// order the sensor lists them in.
func TestTracker_OrderIndependence(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxMissed := rapid.IntRange(0, 4).Draw(rt, "maxMissed")
		frames := rapid.IntRange(1, 12).Draw(rt, "frames")

		a := NewTracker(TrackerConfig{MaxMissedFrames: maxMissed})
		b := NewTracker(TrackerConfig{MaxMissedFrames: maxMissed})
		enteredA, enteredB := map[uint64]int{}, map[uint64]int{}
		a.OnEntered(func(r *Record) { enteredA[r.ID()]++ })
		b.OnEntered(func(r *Record) { enteredB[r.ID()]++ })

		for seq := 1; seq <= frames; seq++ {
			if rapid.Bool().Draw(rt, "absent") {
				a.Update(nil)
				b.Update(nil)
				continue
			}
			present := rapid.SliceOfNDistinct(rapid.Uint64Range(1, 8), 0, 8, rapid.ID[uint64]).Draw(rt, "present")
			bodies := make([]*RawPose, 0, len(present))
			for _, id := range present {
				p := pose(id, float64(seq)+float64(id)/10)
				p.Tracked = rapid.Bool().Draw(rt, "tracked")
				bodies = append(bodies, p)
			}
			shuffled := rapid.Permutation(bodies).Draw(rt, "shuffled")

			a.Update(&Frame{Seq: uint64(seq), Bodies: bodies})
			b.Update(&Frame{Seq: uint64(seq), Bodies: shuffled})
		}

		require.Equal(rt, snapshot(a), snapshot(b))
		assert.Equal(rt, enteredA, enteredB)
		assert.ElementsMatch(rt, ids(a.EnabledBodies()), ids(b.EnabledBodies()))
	})
}

// Every enabled record is in the latest live set and every disabled record is
// absent from it.
func TestTracker_EnabledMatchesLiveSet(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tracker := NewTracker(DefaultTrackerConfig())
		frames := rapid.IntRange(1, 10).Draw(rt, "frames")
		for seq := 1; seq <= frames; seq++ {
			present := rapid.SliceOfNDistinct(rapid.Uint64Range(1, 6), 0, 6, rapid.ID[uint64]).Draw(rt, "present")
			tracker.Update(liveFrame(uint64(seq), present...))

			for _, id := range tracker.order {
				r := tracker.records[id]
				assert.Equal(rt, slices.Contains(present, id), r.Enabled(), "body %d at frame %d", id, seq)
			}
		}
	})
}
