package config

import "time"

// Defaults used when a raw record omits a field. Earlier firmware revisions
// only sent the three mode flags and the brightness.
const (
	DefaultBrightness = 255
	DefaultFlickerFPS = 62 // 16ms frames
	DefaultHueFPS     = 7  // ~150ms per hue step
	DefaultHueRepeat  = 3  // 120 degrees between neighbours
)

// Raw is a configuration record as delivered by the configuration service.
// Numeric fields are optional.
type Raw struct {
	Darkness   bool `yaml:"darkness" json:"darkness"`
	Flicker    bool `yaml:"flicker" json:"flicker"`
	Rotation   bool `yaml:"rotation" json:"rotation"`
	Brightness *int `yaml:"brightness,omitempty" json:"brightness,omitempty"`
	FlickerFPS *int `yaml:"flicker_fps,omitempty" json:"flickerFPS,omitempty"`
	HueFPS     *int `yaml:"hue_fps,omitempty" json:"hueFPS,omitempty"`
	HueRepeat  *int `yaml:"hue_repeat,omitempty" json:"hueRepeat,omitempty"`
}

// DefaultRaw is the record applied when nothing else is configured.
func DefaultRaw() Raw {
	return Raw{
		Flicker:    true,
		Rotation:   true,
		Brightness: Int(DefaultBrightness),
		FlickerFPS: Int(DefaultFlickerFPS),
		HueFPS:     Int(DefaultHueFPS),
		HueRepeat:  Int(DefaultHueRepeat),
	}
}

// Int returns a pointer to v, for filling optional Raw fields.
func Int(v int) *int { return &v }

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// Snapshot is a validated, immutable set of effect settings.
type Snapshot struct {
	Darkness        bool
	FlickerEnabled  bool
	RotationEnabled bool
	BrightnessScale uint8
	FlickerFPS      uint8
	HueFPS          uint8
	HueRepeat       uint8
}

// Raw converts the snapshot back into a fully populated record.
func (s Snapshot) Raw() Raw {
	return Raw{
		Darkness:   s.Darkness,
		Flicker:    s.FlickerEnabled,
		Rotation:   s.RotationEnabled,
		Brightness: Int(int(s.BrightnessScale)),
		FlickerFPS: Int(int(s.FlickerFPS)),
		HueFPS:     Int(int(s.HueFPS)),
		HueRepeat:  Int(int(s.HueRepeat)),
	}
}

// Active is the parameter set consumed by the render path: a snapshot plus
// the values derived from it. Never mutated after publication.
type Active struct {
	Snapshot

	FlickerInterval time.Duration
	HueInterval     time.Duration
	HueModulus      int

	Version   uint64
	AppliedAt time.Time
}

// Derive computes the interval and hue spacing for a validated snapshot.
func Derive(s Snapshot) Active {
	return Active{
		Snapshot:        s,
		FlickerInterval: time.Duration(1000/int(s.FlickerFPS)) * time.Millisecond,
		HueInterval:     time.Duration(1000/int(s.HueFPS)) * time.Millisecond,
		HueModulus:      360 / int(s.HueRepeat),
	}
}
