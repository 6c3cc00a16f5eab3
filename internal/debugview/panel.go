// Package debugview renders tracker state for operators: a periodic text
// panel of hand velocities and velocity charts in HTML and PNG.
package debugview

import (
	"bytes"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/banshee-data/bodytrack/internal/body"
	"github.com/banshee-data/bodytrack/internal/host"
)

// TextPanel writes the hand velocity of every enabled body to W once every
// Every frames while enabled. With a Projection set it also lists each body's
// head in presentation space.
type TextPanel struct {
	W          io.Writer
	Every      int
	Projection *body.Projection

	enabled atomic.Bool
	buf     bytes.Buffer
	bodies  []*body.Record
	written int
}

var _ host.Consumer = (*TextPanel)(nil)

// NewTextPanel creates a panel writing to w every `every` frames. every <= 0
// writes each frame.
func NewTextPanel(w io.Writer, every int, enabled bool) *TextPanel {
	p := &TextPanel{W: w, Every: every}
	p.enabled.Store(enabled)
	return p
}

// SetEnabled toggles output. It may be called from any goroutine.
func (p *TextPanel) SetEnabled(on bool) { p.enabled.Store(on) }

// Enabled reports whether output is on.
func (p *TextPanel) Enabled() bool { return p.enabled.Load() }

// Written reports how many panels have been written.
func (p *TextPanel) Written() int { return p.written }

// ConsumeFrame writes the panel when due.
func (p *TextPanel) ConsumeFrame(fc host.FrameContext) {
	if !p.Enabled() || p.W == nil {
		return
	}
	if p.Every > 1 && fc.Step%uint64(p.Every) != 0 {
		return
	}
	p.bodies = fc.View.AppendEnabledBodies(p.bodies[:0])
	p.buf.Reset()
	Render(&p.buf, p.bodies)
	if p.Projection != nil {
		RenderPositions(&p.buf, p.bodies, *p.Projection)
	}
	if _, err := p.W.Write(p.buf.Bytes()); err == nil {
		p.written++
	}
}

// Render writes the hand velocity panel for bodies to w.
func Render(w io.Writer, bodies []*body.Record) {
	fmt.Fprint(w, "Hand Velocity\n")
	for _, r := range bodies {
		fmt.Fprintf(w, "Left: %s\tRight: %s\n", formatVec(r.Velocity(body.HandLeft)), formatVec(r.Velocity(body.HandRight)))
	}
}

func formatVec(v body.Vec3) string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", v.X, v.Y, v.Z)
}

// RenderPositions writes the projected head position of each body to w.
func RenderPositions(w io.Writer, bodies []*body.Record, proj body.Projection) {
	fmt.Fprint(w, "Head Position\n")
	for _, r := range bodies {
		fmt.Fprintf(w, "%d: %s\n", r.ID(), formatVec(proj.Project(r.Position(body.Head), 0)))
	}
}
