package body

// TrackerConfig holds configuration for the identity map.
type TrackerConfig struct {
	// MaxMissedFrames is the number of consecutive absent frames after which a
	// disabled record is evicted. The frame a body leaves counts as the first,
	// but a record is never evicted in the frame it left, so 1 behaves like 2.
	// Zero keeps disabled records until Reset.
	MaxMissedFrames int
}

// DefaultTrackerConfig keeps disabled records forever, favouring cheap
// recovery from occlusion flicker.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{}
}

// Tracker reconciles sensor snapshots into a persistent identity map.
type Tracker struct {
	Config TrackerConfig

	records map[uint64]*Record
	order   []uint64 // insertion order of records keys

	// live is scratch space reused every frame: identity → pose.
	live map[uint64]*RawPose

	bus   eventBus
	stats TrackerStats
}

// NewTracker creates a tracker with the given configuration.
func NewTracker(config TrackerConfig) *Tracker {
	return &Tracker{
		Config:  config,
		records: make(map[uint64]*Record),
		live:    make(map[uint64]*RawPose),
	}
}

// OnEntered subscribes fn to new identities. The returned func unsubscribes.
func (t *Tracker) OnEntered(fn EnteredFunc) func() { return t.bus.entered.add(fn) }

// OnLeft subscribes fn to identities that stop being tracked. The record stays
// in the map, disabled, and can still be looked up.
func (t *Tracker) OnLeft(fn IdentityFunc) func() { return t.bus.left.add(fn) }

// OnEvicted subscribes fn to records removed by the MaxMissedFrames policy.
// The record is still in the map while fn runs.
func (t *Tracker) OnEvicted(fn IdentityFunc) func() { return t.bus.evicted.add(fn) }

// Update reconciles one frame. A nil frame leaves the map untouched and fires
// nothing. Update never panics on malformed input. Subscribers may query the
// tracker but must not call Update or Reset.
func (t *Tracker) Update(frame *Frame) {
	if frame == nil {
		t.stats.SkippedFrames++
		return
	}
	t.stats.Frames++
	seq := frame.Seq

	// Step 1: live set. Input order only matters for event order.
	clear(t.live)
	for _, p := range frame.Bodies {
		if p == nil || !p.Tracked {
			continue
		}
		if !p.valid() {
			t.stats.InvalidPoses++
			continue
		}
		if _, dup := t.live[p.ID]; dup {
			t.stats.DuplicatePoses++
			diagf("[Tracker] duplicate pose for body %d in frame %d ignored", p.ID, seq)
			continue
		}
		t.live[p.ID] = p
	}

	// Step 2: disable vanished identities, age and evict disabled ones.
	evict := 0
	for _, id := range t.order {
		r := t.records[id]
		if _, ok := t.live[id]; ok {
			continue
		}
		if r.enabled {
			// Subscribers see the record still enabled with its last pose.
			t.bus.emitLeft(id)
			r.enabled = false
			r.missed = 1
			t.stats.Left++
			diagf("[Tracker] body %d left at frame %d", id, seq)
			continue
		}
		r.missed++
		if t.Config.MaxMissedFrames > 0 && r.missed >= t.Config.MaxMissedFrames {
			t.bus.emitEvicted(id)
			r.evicted = true
			evict++
		}
	}
	if evict > 0 {
		t.compact(seq)
	}

	// Step 3: create, resume or refresh live identities in snapshot order.
	for _, p := range frame.Bodies {
		if p == nil || t.live[p.ID] != p {
			continue
		}
		delete(t.live, p.ID)
		r, ok := t.records[p.ID]
		switch {
		case !ok:
			r = newRecord(p, seq)
			t.records[p.ID] = r
			t.order = append(t.order, p.ID)
			t.stats.Entered++
			diagf("[Tracker] body %d entered at frame %d (session %s)", p.ID, seq, r.sessionID)
			t.bus.emitEntered(r)
		case !r.enabled:
			r.resume(p, seq)
			t.stats.Resumed++
			diagf("[Tracker] body %d resumed at frame %d", p.ID, seq)
		default:
			r.refresh(p, seq)
		}
	}
}

// compact drops evicted records from the map and the order slice.
func (t *Tracker) compact(seq uint64) {
	kept := t.order[:0]
	for _, id := range t.order {
		r := t.records[id]
		if !r.evicted {
			kept = append(kept, id)
			continue
		}
		delete(t.records, id)
		t.stats.Evicted++
		diagf("[Tracker] body %d evicted at frame %d after %d missed frames", id, seq, r.missed)
	}
	clear(t.order[len(kept):])
	t.order = kept
}

// Reset drops every record, subscriptions excepted, and zeroes the counters.
// It is the "stop" operation of a session.
func (t *Tracker) Reset() {
	clear(t.records)
	clear(t.live)
	t.order = t.order[:0]
	t.stats = TrackerStats{}
	t.bus.panics = 0
}

// Len returns the number of records in the identity map, enabled or not.
func (t *Tracker) Len() int { return len(t.records) }

// Stats returns a copy of the lifecycle counters.
func (t *Tracker) Stats() TrackerStats {
	s := t.stats
	s.SubscriberPanics = t.bus.panics
	s.Records = len(t.records)
	for _, r := range t.records {
		if r.enabled {
			s.Enabled++
		}
	}
	return s
}
