package sensor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"

	"github.com/banshee-data/bodytrack/internal/body"
)

// maxLineBytes bounds a single encoded frame.
const maxLineBytes = 1 << 20

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return sc
}

// DecoderFeed reads one JSON line per Next call. It suits recorded files where
// reading never blocks for long. Malformed lines are logged and yield a nil
// frame; after EOF or a read error every call returns nil.
type DecoderFeed struct {
	sc   *bufio.Scanner
	line int
	done bool
	err  error
}

// NewDecoderFeed creates a synchronous feed over r.
func NewDecoderFeed(r io.Reader) *DecoderFeed {
	return &DecoderFeed{sc: newScanner(r)}
}

// Next decodes the next line.
func (d *DecoderFeed) Next() *body.Frame {
	if d.done {
		return nil
	}
	if !d.sc.Scan() {
		d.done = true
		if err := d.sc.Err(); err != nil {
			d.err = fmt.Errorf("read frame line %d: %w", d.line+1, err)
			opsf("[Sensor] %v", d.err)
		}
		return nil
	}
	d.line++
	f, err := DecodeFrame(d.sc.Bytes())
	if err != nil {
		opsf("[Sensor] line %d: %v", d.line, err)
		return nil
	}
	return f
}

// Done reports whether the reader is exhausted.
func (d *DecoderFeed) Done() bool { return d.done }

// Err returns the read error that ended the feed, if any. EOF is not an error.
func (d *DecoderFeed) Err() error { return d.err }

// StreamFeed decodes a live stream on a background goroutine and hands the
// most recent frame to the frame loop. Next never blocks and returns each
// frame at most once; frames arriving faster than the loop polls are dropped
// in favour of the newest.
type StreamFeed struct {
	mu      sync.Mutex
	latest  *body.Frame
	pending bool
	dropped int64
	err     error

	done chan struct{}
}

// NewStreamFeed starts decoding r. Cancelling ctx stops the goroutine; if r is
// an io.Closer it is closed so a blocked read returns.
func NewStreamFeed(ctx context.Context, r io.Reader) *StreamFeed {
	s := &StreamFeed{done: make(chan struct{})}
	go s.run(ctx, r)
	if c, ok := r.(io.Closer); ok {
		go func() {
			select {
			case <-ctx.Done():
				_ = c.Close()
			case <-s.done:
			}
		}()
	}
	return s
}

func (s *StreamFeed) run(ctx context.Context, r io.Reader) {
	defer close(s.done)
	sc := newScanner(r)
	line := 0
	for sc.Scan() {
		line++
		f, err := DecodeFrame(sc.Bytes())
		if err != nil {
			opsf("[Sensor] stream line %d: %v", line, err)
			continue
		}
		if f == nil {
			continue
		}
		s.mu.Lock()
		if s.pending {
			s.dropped++
		}
		s.latest = f
		s.pending = true
		s.mu.Unlock()
	}
	if err := sc.Err(); err != nil && !closedOnShutdown(ctx, err) {
		s.mu.Lock()
		s.err = fmt.Errorf("read stream: %w", err)
		s.mu.Unlock()
		diagf("[Sensor] stream ended: %v", err)
	}
}

// closedOnShutdown reports read errors caused by closing the reader after ctx
// ended, including a serial port closed under a blocked read.
func closedOnShutdown(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	var pe *serial.PortError
	return errors.As(err, &pe) && pe.Code() == serial.PortClosed
}

// Next returns the newest undelivered frame or nil.
func (s *StreamFeed) Next() *body.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pending {
		return nil
	}
	s.pending = false
	return s.latest
}

// Dropped reports frames overwritten before the loop polled them.
func (s *StreamFeed) Dropped() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Err returns the read error that ended the stream, if any.
func (s *StreamFeed) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Done is closed when the decoding goroutine exits.
func (s *StreamFeed) Done() <-chan struct{} { return s.done }
