package debugview

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/bodytrack/internal/body"
	"github.com/banshee-data/bodytrack/internal/host"
)

// echartsAssetsHost serves the echarts script for rendered pages.
const echartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// Sample is one frame of chart data.
type Sample struct {
	Step      uint64
	Bodies    int
	MeanSpeed float64 // magnitude of the average velocity of the chart joints
	PeakSpeed float64 // fastest single body, averaged over the chart joints
}

// VelocityChart collects per-frame velocity samples, keeping at most
// MaxSamples of the most recent.
type VelocityChart struct {
	Joints     []body.JointKind
	MaxSamples int

	samples []Sample
	bodies  []*body.Record
	speeds  []float64
}

var _ host.Consumer = (*VelocityChart)(nil)

// NewVelocityChart charts joints, by default both hands.
func NewVelocityChart(maxSamples int, joints ...body.JointKind) *VelocityChart {
	if len(joints) == 0 {
		joints = body.HandJoints
	}
	return &VelocityChart{Joints: joints, MaxSamples: maxSamples}
}

// ConsumeFrame records one sample.
func (c *VelocityChart) ConsumeFrame(fc host.FrameContext) {
	c.bodies = fc.View.AppendEnabledBodies(c.bodies[:0])
	s := Sample{
		Step:      fc.Step,
		Bodies:    len(c.bodies),
		MeanSpeed: r3.Norm(fc.View.AverageVelocity(c.Joints...)),
	}
	if len(c.bodies) > 0 && len(c.Joints) > 0 {
		c.speeds = c.speeds[:0]
		for _, r := range c.bodies {
			var sum body.Vec3
			for _, j := range c.Joints {
				sum = r3.Add(sum, r.Velocity(j))
			}
			c.speeds = append(c.speeds, r3.Norm(sum)/float64(len(c.Joints)))
		}
		s.PeakSpeed = floats.Max(c.speeds)
	}
	c.add(s)
}

func (c *VelocityChart) add(s Sample) {
	c.samples = append(c.samples, s)
	if c.MaxSamples > 0 && len(c.samples) > c.MaxSamples {
		n := copy(c.samples, c.samples[len(c.samples)-c.MaxSamples:])
		c.samples = c.samples[:n]
	}
}

// Samples returns a copy of the retained samples, oldest first.
func (c *VelocityChart) Samples() []Sample {
	return append([]Sample(nil), c.samples...)
}

// RenderHTML writes an interactive line chart page.
func (c *VelocityChart) RenderHTML(w io.Writer) error {
	x := make([]string, 0, len(c.samples))
	mean := make([]opts.LineData, 0, len(c.samples))
	peak := make([]opts.LineData, 0, len(c.samples))
	count := make([]opts.LineData, 0, len(c.samples))
	for _, s := range c.samples {
		x = append(x, strconv.FormatUint(s.Step, 10))
		mean = append(mean, opts.LineData{Value: s.MeanSpeed})
		peak = append(peak, opts.LineData{Value: s.PeakSpeed})
		count = append(count, opts.LineData{Value: s.Bodies})
	}

	speed := charts.NewLine()
	speed.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Body Velocity", Width: "100%", Height: "480px", AssetsHost: echartsAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Joint Velocity", Subtitle: fmt.Sprintf("joints=%v samples=%d", c.Joints, len(c.samples))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Step", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "m/frame", NameLocation: "middle", NameGap: 40}),
	)
	speed.SetXAxis(x).
		AddSeries("mean", mean).
		AddSeries("peak", peak)

	bodies := charts.NewLine()
	bodies.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "240px", AssetsHost: echartsAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Enabled Bodies"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bodies.SetXAxis(x).
		AddSeries("bodies", count)

	page := components.NewPage()
	page.SetAssetsHost(echartsAssetsHost)
	page.AddCharts(speed, bodies)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render velocity chart: %w", err)
	}
	return nil
}

// RenderPNG writes a static plot of the mean and peak speed.
func (c *VelocityChart) RenderPNG(w io.Writer, width, height vg.Length) error {
	p := plot.New()
	p.Title.Text = "Joint Velocity"
	p.X.Label.Text = "Step"
	p.Y.Label.Text = "m/frame"

	meanPts := make(plotter.XYs, 0, len(c.samples))
	peakPts := make(plotter.XYs, 0, len(c.samples))
	for _, s := range c.samples {
		meanPts = append(meanPts, plotter.XY{X: float64(s.Step), Y: s.MeanSpeed})
		peakPts = append(peakPts, plotter.XY{X: float64(s.Step), Y: s.PeakSpeed})
	}

	if len(meanPts) > 0 {
		meanLine, err := plotter.NewLine(meanPts)
		if err != nil {
			return err
		}
		meanLine.Width = vg.Points(1)
		p.Add(meanLine)
		p.Legend.Add("mean", meanLine)

		peakLine, err := plotter.NewLine(peakPts)
		if err != nil {
			return err
		}
		peakLine.Width = vg.Points(1)
		peakLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(peakLine)
		p.Legend.Add("peak", peakLine)
	}
	p.Legend.Top = true

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
