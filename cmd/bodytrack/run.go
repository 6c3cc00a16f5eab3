package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/bodytrack/internal/body"
	"github.com/banshee-data/bodytrack/internal/debugview"
	"github.com/banshee-data/bodytrack/internal/gesture"
	"github.com/banshee-data/bodytrack/internal/host"
	"github.com/banshee-data/bodytrack/internal/recording"
	"github.com/banshee-data/bodytrack/internal/sensor"
	"github.com/banshee-data/bodytrack/internal/timeutil"
)

type runOptions struct {
	source     string
	input      string
	serialPort string
	baud       int
	recording  string
	record     string
	frames     int
	fast       bool
	seed       int64
	chartHTML  string
	chartPNG   string
	debug      bool
	project    bool
}

func newRunCommand(a *app) *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the frame loop against a sensor feed",
		Long: `Run pulls one snapshot per frame from the selected source, reconciles it
into the body tracker and drives the gesture and debug consumers.

Examples:
  # Synthetic bodies for 10 seconds at the configured frame rate
  bodytrack run --source synthetic --frames 300

  # Replay a JSON-lines capture as fast as possible and chart it
  bodytrack run --source jsonl --input capture.jsonl --fast --chart-html velocity.html

  # Record a serial bridge session
  bodytrack run --source serial --serial-port /dev/ttyUSB0 --record "hall session"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.run(ctx, cmd.OutOrStdout(), o)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.source, "source", "synthetic", "Frame source: synthetic, jsonl, serial or replay")
	f.StringVar(&o.input, "input", "-", "JSON-lines file for --source jsonl (- for stdin)")
	f.StringVar(&o.serialPort, "serial-port", "/dev/ttyUSB0", "Serial device for --source serial")
	f.IntVar(&o.baud, "baud", 115200, "Baud rate for --source serial")
	f.StringVar(&o.recording, "recording", "", "Recording ID for --source replay")
	f.StringVar(&o.record, "record", "", "Record the session under this name")
	f.IntVar(&o.frames, "frames", 0, "Stop after this many frames (0 runs until the source ends or interrupt)")
	f.BoolVar(&o.fast, "fast", false, "Step as fast as possible instead of at the frame rate")
	f.Int64Var(&o.seed, "seed", 1, "Seed for --source synthetic")
	f.StringVar(&o.chartHTML, "chart-html", "", "Write an HTML velocity chart to this path on exit")
	f.StringVar(&o.chartPNG, "chart-png", "", "Write a PNG velocity chart to this path on exit")
	f.BoolVar(&o.debug, "debug", false, "Print the hand velocity panel (overrides config)")
	f.BoolVar(&o.project, "project", false, "Include projected head positions in the debug panel")
	return cmd
}

// finite is implemented by feeds with a known end.
type finite interface {
	Done() bool
}

func (a *app) openFeed(ctx context.Context, o *runOptions, store func() (*recording.Store, error)) (sensor.Feed, func() error, error) {
	noop := func() error { return nil }
	switch o.source {
	case "synthetic":
		cfg := sensor.DefaultSyntheticConfig()
		cfg.Seed = o.seed
		cfg.FrameRate = a.cfg.GetFrameRateHz()
		return sensor.NewSynthetic(cfg), noop, nil
	case "jsonl":
		if o.input == "-" {
			return sensor.NewDecoderFeed(os.Stdin), noop, nil
		}
		f, err := os.Open(filepath.Clean(o.input))
		if err != nil {
			return nil, nil, fmt.Errorf("open input: %w", err)
		}
		return sensor.NewDecoderFeed(f), f.Close, nil
	case "serial":
		feed, err := sensor.OpenSerialFeed(ctx, o.serialPort, sensor.PortOptions{BaudRate: o.baud}, nil)
		if err != nil {
			return nil, nil, err
		}
		return feed, noop, nil
	case "replay":
		if o.recording == "" {
			return nil, nil, fmt.Errorf("--recording is required with --source replay")
		}
		s, err := store()
		if err != nil {
			return nil, nil, err
		}
		feed, err := s.Replay(ctx, o.recording)
		if err != nil {
			return nil, nil, fmt.Errorf("replay %s: %w", o.recording, err)
		}
		return feed, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown source %q: expected synthetic, jsonl, serial or replay", o.source)
	}
}

func (a *app) run(ctx context.Context, out io.Writer, o *runOptions) error {
	var st *recording.Store
	openStore := func() (*recording.Store, error) {
		if st != nil {
			return st, nil
		}
		s, err := recording.Open(a.dbPath)
		if err != nil {
			return nil, err
		}
		st = s
		return st, nil
	}
	defer func() {
		if st != nil {
			st.Close()
		}
	}()

	feed, closeFeed, err := a.openFeed(ctx, o, openStore)
	if err != nil {
		return err
	}
	defer closeFeed()
	src := feed

	var rec *recording.Recorder
	if o.record != "" {
		s, err := openStore()
		if err != nil {
			return err
		}
		r, err := s.CreateRecording(ctx, o.record, o.source)
		if err != nil {
			return err
		}
		rec = recording.NewRecorder(ctx, s, r.ID, feed)
		feed = rec
		a.logger.Info("recording session", zap.String("recording_id", r.ID), zap.String("name", r.Name))
	}

	tracker := body.NewTracker(a.cfg.TrackerConfig())
	a.subscribe(tracker)

	joints := a.cfg.GetVelocityJoints()
	panel := debugview.NewTextPanel(out, a.cfg.GetDebugEvery(), a.cfg.GetDebug() || o.debug)
	if o.project {
		proj := a.cfg.GetProjection()
		panel.Projection = &proj
	}
	chart := debugview.NewVelocityChart(a.cfg.GetChartMaxSamples(), joints...)
	lift := gesture.NewLift(a.cfg.GetLiftThreshold(), a.cfg.GetLiftForceScale(), nil)

	h := host.New(feed, tracker, timeutil.RealClock{}, lift, chart, panel)
	h.Config = host.Config{Interval: a.cfg.GetFrameInterval(), MaxFrames: o.frames}

	if o.fast {
		runFast(ctx, h, src, o.frames)
	} else {
		if fin, ok := src.(finite); ok {
			h.AddConsumer(host.ConsumerFunc(func(host.FrameContext) {
				if fin.Done() {
					h.Stop(false)
				}
			}))
		}
		if err := h.Run(ctx); err != nil {
			return err
		}
	}

	if err := writeCharts(chart, o); err != nil {
		return err
	}
	return printSummary(out, h, lift, rec)
}

// runFast steps without waiting for ticks until the feed ends, the frame
// limit is reached or ctx is cancelled.
func runFast(ctx context.Context, h *host.Host, src sensor.Feed, frames int) {
	clock := timeutil.RealClock{}
	fin, _ := src.(finite)
	for ctx.Err() == nil {
		if frames > 0 && h.Steps() >= uint64(frames) {
			return
		}
		if !h.Step(clock.Now()) {
			return
		}
		if fin != nil && fin.Done() {
			return
		}
	}
}

func (a *app) subscribe(t *body.Tracker) {
	log := a.logger.Named("lifecycle")
	t.OnEntered(func(r *body.Record) {
		log.Info("body entered", zap.Uint64("id", r.ID()), zap.String("session", r.SessionID()), zap.Uint64("seq", r.FirstSeq()))
	})
	t.OnLeft(func(id uint64) {
		log.Info("body left", zap.Uint64("id", id))
	})
	t.OnEvicted(func(id uint64) {
		log.Debug("body evicted", zap.Uint64("id", id))
	})
}

func writeCharts(chart *debugview.VelocityChart, o *runOptions) error {
	if o.chartHTML != "" {
		if err := writeFile(o.chartHTML, chart.RenderHTML); err != nil {
			return err
		}
	}
	if o.chartPNG != "" {
		if err := writeFile(o.chartPNG, func(w io.Writer) error {
			return chart.RenderPNG(w, 10*vg.Inch, 4*vg.Inch)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type runSummary struct {
	Steps          uint64            `json:"steps"`
	ConsumerPanics int64             `json:"consumer_panics"`
	LiftedFrames   int               `json:"lifted_frames"`
	Tracker        body.TrackerStats `json:"tracker"`
	RecordingID    string            `json:"recording_id,omitempty"`
	RecordedFrames int64             `json:"recorded_frames,omitempty"`
	FailedFrames   int64             `json:"failed_frames,omitempty"`
}

func printSummary(out io.Writer, h *host.Host, lift *gesture.Lift, rec *recording.Recorder) error {
	s := runSummary{
		Steps:          h.Steps(),
		ConsumerPanics: h.ConsumerPanics(),
		LiftedFrames:   lift.LiftedFrames(),
		Tracker:        h.Tracker().Stats(),
	}
	if rec != nil {
		s.RecordingID = rec.RecordingID()
		s.RecordedFrames = rec.Written()
		s.FailedFrames = rec.Failed()
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
