package diagnostics

import "github.com/coreman2200/funtimes-candela/internal/config"

// Status is what the configuration UI shows: the mode flags, the raw rates
// and the values actually derived from them.
type Status struct {
	Darkness   bool  `json:"darkness"`
	Flicker    bool  `json:"flicker"`
	Rotation   bool  `json:"rotation"`
	Brightness uint8 `json:"brightness"`
	FlickerFPS uint8 `json:"flickerFPS"`
	HueFPS     uint8 `json:"hueFPS"`
	HueRepeat  uint8 `json:"hueRepeat"`

	FlickerIntervalMs int64 `json:"flickerIntervalMs"`
	HueIntervalMs     int64 `json:"hueIntervalMs"`
	HueModulus        int   `json:"hueModulus"`

	Version     uint64  `json:"version"`
	Phase       uint16  `json:"phase"`
	Elements    int     `json:"elements"`
	Groups      int     `json:"groups"`
	Frames      int64   `json:"frames"`
	HueTicks    int64   `json:"hueTicks"`
	WriteErrors int64   `json:"writeErrors"`
	RenderMeanU float64 `json:"renderMeanUs"`
	RenderP99U  float64 `json:"renderP99Us"`
	UptimeS     float64 `json:"uptimeS"`
}

// FromActive fills the configuration part of a Status.
func FromActive(act *config.Active) Status {
	return Status{
		Darkness:          act.Darkness,
		Flicker:           act.FlickerEnabled,
		Rotation:          act.RotationEnabled,
		Brightness:        act.BrightnessScale,
		FlickerFPS:        act.FlickerFPS,
		HueFPS:            act.HueFPS,
		HueRepeat:         act.HueRepeat,
		FlickerIntervalMs: act.FlickerInterval.Milliseconds(),
		HueIntervalMs:     act.HueInterval.Milliseconds(),
		HueModulus:        act.HueModulus,
		Version:           act.Version,
	}
}
