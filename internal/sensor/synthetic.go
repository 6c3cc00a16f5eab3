package sensor

import (
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/bodytrack/internal/body"
)

// skeleton is a standing pose relative to SpineBase, in metres with Y up.
var skeleton = [body.JointCount]body.Vec3{
	body.SpineBase:     {X: 0, Y: 0, Z: 0},
	body.SpineMid:      {X: 0, Y: 0.30, Z: 0},
	body.SpineShoulder: {X: 0, Y: 0.50, Z: 0},
	body.Neck:          {X: 0, Y: 0.60, Z: 0},
	body.Head:          {X: 0, Y: 0.75, Z: 0},
	body.ShoulderLeft:  {X: -0.18, Y: 0.52, Z: 0},
	body.ElbowLeft:     {X: -0.28, Y: 0.28, Z: 0},
	body.WristLeft:     {X: -0.31, Y: 0.05, Z: 0},
	body.HandLeft:      {X: -0.32, Y: -0.02, Z: 0},
	body.HandTipLeft:   {X: -0.33, Y: -0.10, Z: 0},
	body.ThumbLeft:     {X: -0.29, Y: -0.04, Z: -0.03},
	body.ShoulderRight: {X: 0.18, Y: 0.52, Z: 0},
	body.ElbowRight:    {X: 0.28, Y: 0.28, Z: 0},
	body.WristRight:    {X: 0.31, Y: 0.05, Z: 0},
	body.HandRight:     {X: 0.32, Y: -0.02, Z: 0},
	body.HandTipRight:  {X: 0.33, Y: -0.10, Z: 0},
	body.ThumbRight:    {X: 0.29, Y: -0.04, Z: -0.03},
	body.HipLeft:       {X: -0.10, Y: -0.05, Z: 0},
	body.KneeLeft:      {X: -0.10, Y: -0.45, Z: 0},
	body.AnkleLeft:     {X: -0.10, Y: -0.85, Z: 0},
	body.FootLeft:      {X: -0.10, Y: -0.90, Z: -0.10},
	body.HipRight:      {X: 0.10, Y: -0.05, Z: 0},
	body.KneeRight:     {X: 0.10, Y: -0.45, Z: 0},
	body.AnkleRight:    {X: 0.10, Y: -0.85, Z: 0},
	body.FootRight:     {X: 0.10, Y: -0.90, Z: -0.10},
}

// leftChain and rightChain list the joints moved when a hand is raised or waved.
var (
	leftChain  = []body.JointKind{body.ElbowLeft, body.WristLeft, body.HandLeft, body.HandTipLeft, body.ThumbLeft}
	rightChain = []body.JointKind{body.ElbowRight, body.WristRight, body.HandRight, body.HandTipRight, body.ThumbRight}
)

// SyntheticConfig tunes the generator. Zero fields take the defaults from
// DefaultSyntheticConfig.
type SyntheticConfig struct {
	Slots        int     // concurrent body positions across the scene
	FrameRate    float64 // frames per second
	Seed         int64
	Start        time.Time
	MeanPresence int     // average frames a body stays
	MeanAbsence  int     // average frames a slot stays empty
	FlickerProb  float64 // chance per frame that a present body is reported untracked
	ReturnProb   float64 // chance a slot's next body reuses the previous identity
}

// DefaultSyntheticConfig returns a three-slot scene at 30 fps.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		Slots:        3,
		FrameRate:    30,
		Seed:         1,
		Start:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		MeanPresence: 240,
		MeanAbsence:  60,
		FlickerProb:  0.01,
		ReturnProb:   0.3,
	}
}

type slot struct {
	present   bool
	id        uint64
	lastID    uint64
	remaining int
	phase     float64
	root      body.Vec3
}

// Synthetic generates a deterministic stream of bodies that enter, wave,
// raise their hands, flicker out of tracking and leave. The same config
// always yields the same frames.
type Synthetic struct {
	cfg    SyntheticConfig
	rng    *rand.Rand
	slots  []slot
	seq    uint64
	nextID uint64
}

// NewSynthetic creates a generator from cfg.
func NewSynthetic(cfg SyntheticConfig) *Synthetic {
	def := DefaultSyntheticConfig()
	if cfg.Slots <= 0 {
		cfg.Slots = def.Slots
	}
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = def.FrameRate
	}
	if cfg.Start.IsZero() {
		cfg.Start = def.Start
	}
	if cfg.MeanPresence <= 0 {
		cfg.MeanPresence = def.MeanPresence
	}
	if cfg.MeanAbsence <= 0 {
		cfg.MeanAbsence = def.MeanAbsence
	}
	g := &Synthetic{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		slots:  make([]slot, cfg.Slots),
		nextID: 1,
	}
	for i := range g.slots {
		s := &g.slots[i]
		s.root = body.Vec3{X: (float64(i) - float64(cfg.Slots-1)/2) * 0.9, Y: 0.9, Z: 2.5}
		s.remaining = g.span(cfg.MeanAbsence) / 2
	}
	return g
}

// span draws a duration around mean frames, at least one.
func (g *Synthetic) span(mean int) int {
	n := mean/2 + g.rng.Intn(mean+1)
	if n < 1 {
		n = 1
	}
	return n
}

// Next produces the next frame. It never returns nil.
func (g *Synthetic) Next() *body.Frame {
	g.seq++
	t := float64(g.seq) / g.cfg.FrameRate
	f := &body.Frame{
		Seq:       g.seq,
		Timestamp: g.cfg.Start.Add(time.Duration(t * float64(time.Second))),
	}
	for i := range g.slots {
		s := &g.slots[i]
		g.advance(s)
		if !s.present {
			continue
		}
		tracked := g.rng.Float64() >= g.cfg.FlickerProb
		f.Bodies = append(f.Bodies, g.pose(s, t, tracked))
	}
	return f
}

func (g *Synthetic) advance(s *slot) {
	s.remaining--
	if s.remaining > 0 {
		return
	}
	if s.present {
		s.present = false
		s.lastID = s.id
		s.remaining = g.span(g.cfg.MeanAbsence)
		return
	}
	s.present = true
	if s.lastID != 0 && g.rng.Float64() < g.cfg.ReturnProb {
		s.id = s.lastID
	} else {
		s.id = g.nextID
		g.nextID++
	}
	s.phase = g.rng.Float64() * 2 * math.Pi
	s.remaining = g.span(g.cfg.MeanPresence)
}

// pose builds the skeleton for s at time t. The right hand waves at about
// 1.5 Hz; both arms rise above the head for part of a slow 8 s cycle.
func (g *Synthetic) pose(s *slot, t float64, tracked bool) *body.RawPose {
	p := &body.RawPose{ID: s.id, Tracked: tracked, Joints: make(map[body.JointKind]body.Joint, body.JointCount)}
	sway := 0.05 * math.Sin(0.4*t+s.phase)
	lift := math.Max(0, math.Sin(2*math.Pi*t/8+s.phase))
	wave := 0.15 * math.Sin(2*math.Pi*1.5*t+s.phase)

	for k := body.JointKind(0); k < body.JointCount; k++ {
		off := skeleton[k]
		off.X += sway
		p.Joints[k] = body.Joint{Position: r3.Add(s.root, off)}
	}
	// Raising an arm carries the whole chain above the head.
	raise := lift
	for _, k := range leftChain {
		g.shift(p, k, body.Vec3{Y: raise})
	}
	for _, k := range rightChain {
		g.shift(p, k, body.Vec3{X: wave, Y: raise})
	}
	return p
}

func (g *Synthetic) shift(p *body.RawPose, k body.JointKind, d body.Vec3) {
	jt := p.Joints[k]
	jt.Position = r3.Add(jt.Position, d)
	p.Joints[k] = jt
}
