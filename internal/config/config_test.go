package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHueModulusIsExact(t *testing.T) {
	for repeat := 3; repeat <= 255; repeat += 3 {
		raw := DefaultRaw()
		raw.HueRepeat = Int(repeat)
		snap, err := Validate(raw)
		if 360%repeat != 0 {
			assert.ErrorIs(t, err, ErrInvalidRepeat, "repeat %d", repeat)
			continue
		}
		require.NoError(t, err, "repeat %d", repeat)
		act := Derive(snap)
		assert.Equal(t, 360, act.HueModulus*repeat, "repeat %d", repeat)
	}

	raw := DefaultRaw()
	raw.HueRepeat = Int(3)
	snap, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, 120, Derive(snap).HueModulus)

	raw.HueRepeat = Int(6)
	snap, err = Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, 60, Derive(snap).HueModulus)
}

func TestDeriveIntervals(t *testing.T) {
	snap, err := Validate(DefaultRaw())
	require.NoError(t, err)
	act := Derive(snap)
	assert.Equal(t, 16*time.Millisecond, act.FlickerInterval)
	assert.Equal(t, 142*time.Millisecond, act.HueInterval)

	raw := DefaultRaw()
	raw.FlickerFPS = Int(1)
	raw.HueFPS = Int(255)
	snap, err = Validate(raw)
	require.NoError(t, err)
	act = Derive(snap)
	assert.Equal(t, time.Second, act.FlickerInterval)
	assert.Equal(t, 3*time.Millisecond, act.HueInterval)
}

var rejectCases = []struct {
	name  string
	mod   func(*Raw)
	want  error
	field string
}{
	{"zero flicker fps", func(r *Raw) { r.FlickerFPS = Int(0) }, ErrInvalidRate, "flickerFPS"},
	{"zero hue fps", func(r *Raw) { r.HueFPS = Int(0) }, ErrInvalidRate, "hueFPS"},
	{"flicker fps too high", func(r *Raw) { r.FlickerFPS = Int(256) }, ErrInvalidRate, "flickerFPS"},
	{"zero repeat", func(r *Raw) { r.HueRepeat = Int(0) }, ErrInvalidRepeat, "hueRepeat"},
	{"repeat not multiple of 3", func(r *Raw) { r.HueRepeat = Int(4) }, ErrInvalidRepeat, "hueRepeat"},
	{"repeat not dividing 360", func(r *Raw) { r.HueRepeat = Int(21) }, ErrInvalidRepeat, "hueRepeat"},
	{"negative brightness", func(r *Raw) { r.Brightness = Int(-1) }, ErrInvalidBrightness, "brightness"},
}

func TestValidateRejects(t *testing.T) {
	for _, c := range rejectCases {
		t.Run(c.name, func(t *testing.T) {
			raw := DefaultRaw()
			c.mod(&raw)
			_, err := Validate(raw)
			require.ErrorIs(t, err, c.want)
			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, c.field, ce.Field)
		})
	}
}

func TestLegacyRecordUsesDefaults(t *testing.T) {
	snap, err := Validate(Raw{Flicker: true})
	require.NoError(t, err)
	assert.Equal(t, uint8(DefaultBrightness), snap.BrightnessScale)
	assert.Equal(t, uint8(DefaultFlickerFPS), snap.FlickerFPS)
	assert.Equal(t, uint8(DefaultHueFPS), snap.HueFPS)
	assert.Equal(t, uint8(DefaultHueRepeat), snap.HueRepeat)
	assert.True(t, snap.FlickerEnabled)
	assert.False(t, snap.RotationEnabled)
}

func TestApplyRejectKeepsPrevious(t *testing.T) {
	a, err := NewApplier(DefaultRaw())
	require.NoError(t, err)
	before := a.Active()

	bad := DefaultRaw()
	bad.FlickerFPS = Int(0)
	_, err = a.Apply(bad)
	require.ErrorIs(t, err, ErrInvalidRate)
	assert.Same(t, before, a.Active())

	good := DefaultRaw()
	good.FlickerFPS = Int(100)
	good.HueRepeat = Int(6)
	act, err := a.Apply(good)
	require.NoError(t, err)
	assert.Same(t, act, a.Active())
	assert.Equal(t, 10*time.Millisecond, a.Active().FlickerInterval)
	assert.Equal(t, 60, a.Active().HueModulus)
	assert.Greater(t, act.Version, before.Version)
}

func TestNewApplierRejectsInvalid(t *testing.T) {
	raw := DefaultRaw()
	raw.HueFPS = Int(0)
	_, err := NewApplier(raw)
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestOnApplyListener(t *testing.T) {
	a, err := NewApplier(DefaultRaw())
	require.NoError(t, err)
	var got []uint64
	a.OnApply(func(act *Active) { got = append(got, act.Version) })

	raw := DefaultRaw()
	raw.Darkness = true
	_, err = a.Apply(raw)
	require.NoError(t, err)
	raw.HueRepeat = Int(5)
	_, err = a.Apply(raw)
	require.Error(t, err)

	assert.Equal(t, []uint64{2}, got)
}

// Readers must always see a consistent pair of rate and derived interval.
func TestConcurrentApplyNoTornReads(t *testing.T) {
	a, err := NewApplier(DefaultRaw())
	require.NoError(t, err)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			raw := DefaultRaw()
			raw.HueFPS = Int(1 + i%255)
			raw.HueRepeat = Int([]int{3, 6, 12, 30}[i%4])
			_, _ = a.Apply(raw)
		}
	}()

	for i := 0; i < 10000; i++ {
		act := a.Active()
		require.Equal(t, time.Duration(1000/int(act.HueFPS))*time.Millisecond, act.HueInterval)
		require.Equal(t, 360/int(act.HueRepeat), act.HueModulus)
	}
	close(stop)
	wg.Wait()
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	c := Default()
	c.Driver = "spi"
	c.Effect.HueRepeat = Int(6)
	c.Topology.Groups[0].Count = 30
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "spi", got.Driver)
	assert.Equal(t, 30, got.Topology.Groups[0].Count)
	require.NotNil(t, got.Effect.HueRepeat)
	assert.Equal(t, 6, *got.Effect.HueRepeat)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("driver: console\neffect:\n  darkness: true\n"), 0644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "console", got.Driver)
	assert.Equal(t, ":8080", got.Addr)
	assert.True(t, got.Effect.Darkness)
	assert.Equal(t, 12, got.Topology.Layout().Count())
}

func TestLoadRejectsBadTopology(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("topology:\n  groups: []\n"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}
