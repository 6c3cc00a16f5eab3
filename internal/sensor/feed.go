// Package sensor provides the upstream body feeds: scripted sequences,
// JSON-lines decoders over files and serial bridges, and a deterministic
// synthetic generator.
package sensor

import (
	"github.com/banshee-data/bodytrack/internal/body"
)

// Feed is the per-frame upstream call. Next returns nil while the sensor has
// no data and must not block the frame loop.
type Feed interface {
	Next() *body.Frame
}

// FeedFunc adapts a function to Feed.
type FeedFunc func() *body.Frame

// Next calls f.
func (f FeedFunc) Next() *body.Frame { return f() }

// Scripted replays a fixed frame sequence. Nil entries stand for frames in
// which the sensor had no data. Once exhausted, Next returns nil.
type Scripted struct {
	frames []*body.Frame
	pos    int
}

// NewScripted creates a feed over frames.
func NewScripted(frames ...*body.Frame) *Scripted {
	return &Scripted{frames: frames}
}

// Next returns the next scripted frame.
func (s *Scripted) Next() *body.Frame {
	if s.pos >= len(s.frames) {
		return nil
	}
	f := s.frames[s.pos]
	s.pos++
	return f
}

// Remaining reports how many scripted frames are left.
func (s *Scripted) Remaining() int { return len(s.frames) - s.pos }

// Done reports whether every scripted frame has been returned.
func (s *Scripted) Done() bool { return s.pos >= len(s.frames) }
