package diagnostics

import (
	"errors"

	"github.com/coreman2200/funtimes-candela/internal/config"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Applied describes an accepted configuration.
func Applied(act *config.Active) Diagnostic {
	return Diagnostic{
		Severity: Info,
		Code:     "CONFIG.APPLIED",
		Summary:  "Configuration applied",
		Evidence: map[string]any{
			"version":           act.Version,
			"flickerIntervalMs": act.FlickerInterval.Milliseconds(),
			"hueIntervalMs":     act.HueInterval.Milliseconds(),
			"hueModulus":        act.HueModulus,
		},
	}
}

// Rejected turns an Apply error into an operator-facing notice.
func Rejected(err error) Diagnostic {
	d := Diagnostic{
		Severity: Warn,
		Code:     "CONFIG.REJECTED",
		Summary:  "Configuration rejected; previous settings remain active",
		Detail:   err.Error(),
	}
	var ce *config.ConfigError
	if errors.As(err, &ce) {
		d.Evidence = map[string]any{"field": ce.Field, "value": ce.Value}
	}
	switch {
	case errors.Is(err, config.ErrInvalidRate):
		d.Code = "CONFIG.INVALID_RATE"
		d.SuggestedFixes = []string{"Use a frame rate between 1 and 255"}
	case errors.Is(err, config.ErrInvalidRepeat):
		d.Code = "CONFIG.INVALID_REPEAT"
		d.SuggestedFixes = []string{"Use a multiple of 3 that divides 360 (3, 6, 12, 15, 18, 24, 30, ...)"}
	case errors.Is(err, config.ErrInvalidBrightness):
		d.Code = "CONFIG.INVALID_BRIGHTNESS"
		d.SuggestedFixes = []string{"Use a brightness between 0 and 255"}
	}
	return d
}
