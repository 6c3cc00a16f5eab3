package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/bodytrack/internal/body"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultConfigPath is the path to the canonical tracking defaults file.
const DefaultConfigPath = "config/tracking.defaults.json"

// TrackingConfig is the root configuration for the body tracker and its
// consumers. Every field is optional; the Get* methods supply defaults for
// anything the file leaves out.
type TrackingConfig struct {
	// Identity map. A record is never evicted in the frame it left, so the
	// smallest eviction setting is 2; 0 disables eviction.
	MaxMissedFrames *int `json:"max_missed_frames,omitempty"`

	// Frame loop
	FrameRateHz *float64 `json:"frame_rate_hz,omitempty"`

	// Presentation-space projection
	ProjectionScaleX  *float64 `json:"projection_scale_x,omitempty"`
	ProjectionScaleY  *float64 `json:"projection_scale_y,omitempty"`
	ProjectionOffsetX *float64 `json:"projection_offset_x,omitempty"`
	ProjectionOffsetY *float64 `json:"projection_offset_y,omitempty"`

	// Debug display
	Debug           *bool    `json:"debug,omitempty"`
	DebugEvery      *int     `json:"debug_every,omitempty"`
	VelocityJoints  []string `json:"velocity_joints,omitempty"`
	ChartMaxSamples *int     `json:"chart_max_samples,omitempty"`

	// Lift gesture
	LiftThreshold  *float64 `json:"lift_threshold,omitempty"`
	LiftForceScale *float64 `json:"lift_force_scale,omitempty"`

	LogLevel *string `json:"log_level,omitempty"`
}

// EmptyTrackingConfig returns a config with every field unset.
func EmptyTrackingConfig() *TrackingConfig {
	return &TrackingConfig{}
}

// LoadTrackingConfig loads a TrackingConfig from a JSON file. The path must
// have a .json extension and the file must be under 1MB. Omitted fields keep
// their defaults, so partial configs are safe.
func LoadTrackingConfig(path string) (*TrackingConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTrackingConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents. Panics if the file cannot be loaded. Test-only:
// the CLI relies on the Get* defaults when --config is omitted, and the
// package tests keep the shipped file equal to those defaults.
func MustLoadDefaultConfig() *TrackingConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // deeper packages
		"../../../../" + DefaultConfigPath, // even deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadTrackingConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the set values are usable.
func (c *TrackingConfig) Validate() error {
	if c.MaxMissedFrames != nil {
		if v := *c.MaxMissedFrames; v < 0 || v == 1 {
			return fmt.Errorf("max_missed_frames must be 0 (never evict) or at least 2, got %d", v)
		}
	}
	if c.FrameRateHz != nil {
		if v := *c.FrameRateHz; v <= 0 || v > 1000 || math.IsNaN(v) {
			return fmt.Errorf("frame_rate_hz must be in (0, 1000], got %f", v)
		}
	}
	if c.DebugEvery != nil && *c.DebugEvery < 1 {
		return fmt.Errorf("debug_every must be at least 1, got %d", *c.DebugEvery)
	}
	if c.ChartMaxSamples != nil && *c.ChartMaxSamples < 1 {
		return fmt.Errorf("chart_max_samples must be at least 1, got %d", *c.ChartMaxSamples)
	}
	if c.LiftThreshold != nil {
		if v := *c.LiftThreshold; v < 0 || v > 1 {
			return fmt.Errorf("lift_threshold must be between 0 and 1, got %f", v)
		}
	}
	if c.LiftForceScale != nil && *c.LiftForceScale < 0 {
		return fmt.Errorf("lift_force_scale must be non-negative, got %f", *c.LiftForceScale)
	}
	if len(c.VelocityJoints) > 0 {
		if _, err := body.ParseJointKinds(c.VelocityJoints); err != nil {
			return fmt.Errorf("invalid velocity_joints: %w", err)
		}
	}
	if c.LogLevel != nil && *c.LogLevel != "" {
		if _, err := zapcore.ParseLevel(*c.LogLevel); err != nil {
			return fmt.Errorf("invalid log_level %q: %w", *c.LogLevel, err)
		}
	}
	return nil
}

// GetMaxMissedFrames returns the max_missed_frames value or the default.
func (c *TrackingConfig) GetMaxMissedFrames() int {
	if c.MaxMissedFrames == nil {
		return 0 // default: never evict
	}
	return *c.MaxMissedFrames
}

// GetFrameRateHz returns the frame_rate_hz value or the default.
func (c *TrackingConfig) GetFrameRateHz() float64 {
	if c.FrameRateHz == nil {
		return 30
	}
	return *c.FrameRateHz
}

// GetFrameInterval converts the frame rate into a tick interval.
func (c *TrackingConfig) GetFrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.GetFrameRateHz())
}

// GetProjection returns the configured presentation-space projection.
func (c *TrackingConfig) GetProjection() body.Projection {
	return body.Projection{
		Scale:  r2.Vec{X: getFloat(c.ProjectionScaleX, 1), Y: getFloat(c.ProjectionScaleY, 1)},
		Offset: r2.Vec{X: getFloat(c.ProjectionOffsetX, 0), Y: getFloat(c.ProjectionOffsetY, 0)},
	}
}

// GetDebug returns the debug value or the default.
func (c *TrackingConfig) GetDebug() bool {
	if c.Debug == nil {
		return false
	}
	return *c.Debug
}

// GetDebugEvery returns the debug_every value or the default.
func (c *TrackingConfig) GetDebugEvery() int {
	if c.DebugEvery == nil {
		return 30
	}
	return *c.DebugEvery
}

// GetVelocityJoints returns the joints averaged by velocity displays.
// Unknown names fall back to the hand joints; Validate reports them.
func (c *TrackingConfig) GetVelocityJoints() []body.JointKind {
	if len(c.VelocityJoints) == 0 {
		return append([]body.JointKind(nil), body.HandJoints...)
	}
	joints, err := body.ParseJointKinds(c.VelocityJoints)
	if err != nil {
		return append([]body.JointKind(nil), body.HandJoints...)
	}
	return joints
}

// GetChartMaxSamples returns the chart_max_samples value or the default.
func (c *TrackingConfig) GetChartMaxSamples() int {
	if c.ChartMaxSamples == nil {
		return 1800 // one minute at 30 fps
	}
	return *c.ChartMaxSamples
}

// GetLiftThreshold returns the lift_threshold value or the default.
func (c *TrackingConfig) GetLiftThreshold() float64 {
	return getFloat(c.LiftThreshold, 0.5)
}

// GetLiftForceScale returns the lift_force_scale value or the default.
func (c *TrackingConfig) GetLiftForceScale() float64 {
	return getFloat(c.LiftForceScale, 10)
}

// GetLogLevel returns the log_level value or the default.
func (c *TrackingConfig) GetLogLevel() string {
	if c.LogLevel == nil || *c.LogLevel == "" {
		return "info"
	}
	return *c.LogLevel
}

// TrackerConfig derives the identity map configuration.
func (c *TrackingConfig) TrackerConfig() body.TrackerConfig {
	return body.TrackerConfig{MaxMissedFrames: c.GetMaxMissedFrames()}
}

func getFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
