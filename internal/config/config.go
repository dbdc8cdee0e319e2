package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-candela/internal/flicker"
	"github.com/coreman2200/funtimes-candela/internal/layout"
)

type PowerCfg struct {
	LimitAmps float64 `yaml:"limit_amps"`
	WhiteCap  float64 `yaml:"white_cap"`
	ChanMA    float64 `yaml:"chan_ma"`
}

type SPI struct {
	SpeedHz int `yaml:"speed_hz"` // e.g. 2500000
}

type TopologyCfg struct {
	Groups     []layout.Group `yaml:"groups"`
	RestingHue string         `yaml:"resting_hue"` // "spread" | "random"
	Seed       int64          `yaml:"seed"`
}

type FlickerCfg struct {
	Generator  string         `yaml:"generator"` // "candle" | "simplex"
	Brightness flicker.Params `yaml:"brightness"`
	Saturation flicker.Params `yaml:"saturation"`
}

// File is the on-disk config.yaml.
type File struct {
	Driver string `yaml:"driver"` // "spi" | "console" | "sim"
	Addr   string `yaml:"addr"`
	PollMS int    `yaml:"poll_ms"`

	Topology TopologyCfg `yaml:"topology"`
	Flicker  FlickerCfg  `yaml:"flicker"`
	Effect   Raw         `yaml:"effect"`

	Power PowerCfg `yaml:"power"`
	SPI   SPI      `yaml:"spi,omitempty"`
}

// Default is a single strip of twelve elements on the first SPI port.
func Default() *File {
	return &File{
		Driver: "sim",
		Addr:   ":8080",
		PollMS: 1,
		Topology: TopologyCfg{
			Groups:     []layout.Group{{Name: "strip", Port: "", Count: 12}},
			RestingHue: "spread",
		},
		Flicker: FlickerCfg{
			Generator:  "candle",
			Brightness: flicker.DefaultBrightness,
			Saturation: flicker.DefaultSaturation,
		},
		Effect: DefaultRaw(),
		Power:  PowerCfg{ChanMA: 20},
		SPI:    SPI{SpeedHz: 2500000},
	}
}

// Load reads path on top of Default, so a partial file keeps the defaults
// for anything it leaves out.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Topology.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *File) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Layout returns the topology described by the file.
func (t TopologyCfg) Layout() layout.Topology {
	return layout.Topology{Groups: t.Groups}
}

func (t TopologyCfg) validate() error {
	if err := t.Layout().Validate(); err != nil {
		return err
	}
	switch t.RestingHue {
	case "", "spread", "random":
		return nil
	default:
		return fmt.Errorf("unknown resting_hue %q", t.RestingHue)
	}
}
