package voting

import (
	"time"

	"kairosvote.io/kairos/lib/errors"
)

type WindowType string

const (
	WindowShort  WindowType = "SHORT"  // 5 minutes
	WindowMedium WindowType = "MEDIUM" // 30 minutes
	WindowLong   WindowType = "LONG"   // 2 hours
	WindowCustom WindowType = "CUSTOM" // explicit duration
)

// ExtensionPolicy bounds near-miss deadline extensions. A near miss is
// a tally within NearMissEpsilon of the current bar, detected within
// TriggerWindow of the deadline.
type ExtensionPolicy struct {
	TriggerWindow     time.Duration `json:"trigger_window" yaml:"trigger_window"`
	NearMissEpsilon   float64       `json:"near_miss_epsilon" yaml:"near_miss_epsilon"`
	ExtensionLength   time.Duration `json:"extension_length" yaml:"extension_length"`
	MaxExtensions     int           `json:"max_extensions" yaml:"max_extensions"`
	MaxTotalExtension time.Duration `json:"max_total_extension" yaml:"max_total_extension"`
}

// WindowConfig describes the lifetime of a proposal's voting window.
// GraceBuffer is subtracted from `now` before deadline comparisons so
// clock drift does not unfairly exclude a slightly late vote.
type WindowConfig struct {
	Type           WindowType      `json:"type" yaml:"type"`
	CustomDuration time.Duration   `json:"custom_duration" yaml:"custom_duration"`
	GraceBuffer    time.Duration   `json:"grace_buffer" yaml:"grace_buffer"`
	Extension      ExtensionPolicy `json:"extension" yaml:"extension"`
}

func (c WindowConfig) Duration() time.Duration {
	switch c.Type {
	case WindowShort:
		return 5 * time.Minute
	case WindowMedium:
		return 30 * time.Minute
	case WindowLong:
		return 2 * time.Hour
	case WindowCustom:
		return c.CustomDuration
	}

	return 0
}

func (c WindowConfig) IsWellFormed() (err error) {
	switch c.Type {
	case WindowShort, WindowMedium, WindowLong:
	case WindowCustom:
		if c.CustomDuration <= 0 {
			err = errors.ErrorInvalidWindowConfig.Clone().SetData("custom_duration", c.CustomDuration.String())
			return
		}
	default:
		err = errors.ErrorInvalidWindowConfig.Clone().SetData("type", string(c.Type))
		return
	}

	if c.GraceBuffer < 0 {
		err = errors.ErrorInvalidWindowConfig.Clone().SetData("grace_buffer", c.GraceBuffer.String())
		return
	}

	e := c.Extension
	if e.MaxExtensions < 0 || e.NearMissEpsilon < 0 || e.TriggerWindow < 0 || e.MaxTotalExtension < 0 {
		err = errors.ErrorInvalidWindowConfig.Clone().SetData("extension", e)
		return
	}
	if e.MaxExtensions > 0 && e.ExtensionLength <= 0 {
		err = errors.ErrorInvalidWindowConfig.Clone().SetData("extension_length", e.ExtensionLength.String())
		return
	}

	return
}

// NewDefaultWindowConfig allows a single short extension when the tally
// comes within 5% of the bar in the last tenth of the window.
func NewDefaultWindowConfig(windowType WindowType) WindowConfig {
	duration := WindowConfig{Type: windowType}.Duration()

	return WindowConfig{
		Type:        windowType,
		GraceBuffer: 5 * time.Second,
		Extension: ExtensionPolicy{
			TriggerWindow:     duration / 10,
			NearMissEpsilon:   0.05,
			ExtensionLength:   duration / 10,
			MaxExtensions:     1,
			MaxTotalExtension: duration / 5,
		},
	}
}
