// Command flickersim runs the effect against a terminal preview, optionally
// with the configuration service so settings can be changed live.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-candela/internal/config"
	"github.com/coreman2200/funtimes-candela/internal/flicker"
	"github.com/coreman2200/funtimes-candela/internal/layout"
	"github.com/coreman2200/funtimes-candela/internal/portal"
	"github.com/coreman2200/funtimes-candela/internal/preview"
	"github.com/coreman2200/funtimes-candela/internal/render"
)

func main() {
	var (
		configPath = flag.String("config", "", "optional config.yaml (topology and flicker params)")
		count      = flag.Int("count", 12, "elements when no config is given")
		generator  = flag.String("generator", "", "override flicker generator: candle | simplex")
		flickerFPS = flag.Int("flicker-fps", config.DefaultFlickerFPS, "flicker frames per second")
		hueFPS     = flag.Int("hue-fps", config.DefaultHueFPS, "hue steps per second")
		repeat     = flag.Int("repeat", config.DefaultHueRepeat, "hue repeat (multiple of 3 dividing 360)")
		brightness = flag.Int("brightness", config.DefaultBrightness, "global brightness 0..255")
		noFlicker  = flag.Bool("no-flicker", false, "disable flicker")
		noRotation = flag.Bool("no-rotation", false, "disable hue rotation")
		addr       = flag.String("addr", "", "also serve the configuration page on this address")
		logPath    = flag.String("log", "", "write logs to this file (the terminal is taken by the preview)")
	)
	flag.Parse()

	var out io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "log:", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	cfg := config.Default()
	cfg.Topology.Groups = []layout.Group{{Name: "strip", Count: *count}}
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "config:", err)
			os.Exit(1)
		}
		cfg = c
	}
	if *generator != "" {
		cfg.Flicker.Generator = *generator
	}

	applier, err := config.NewApplier(config.Raw{
		Flicker:    !*noFlicker,
		Rotation:   !*noRotation,
		Brightness: config.Int(*brightness),
		FlickerFPS: config.Int(*flickerFPS),
		HueFPS:     config.Int(*hueFPS),
		HueRepeat:  config.Int(*repeat),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	gen, err := flicker.ByName(cfg.Flicker.Generator)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	topo := cfg.Topology.Layout()
	elems := render.NewElements(topo, applier.Active(), render.ElementOptions{
		Generator:  gen,
		Brightness: cfg.Flicker.Brightness,
		Saturation: cfg.Flicker.Saturation,
		RandomHue:  cfg.Topology.RestingHue == "random",
		Seed:       time.Now().UnixNano(),
	})

	var eng *render.Engine
	statusLine := func() string {
		st := eng.Status()
		return fmt.Sprintf("phase %3d  flicker %dms  hue %dms  mod %d  v%d  frames %d  (q to quit)",
			st.Phase, st.FlickerIntervalMs, st.HueIntervalMs, st.HueModulus, st.Version, st.Frames)
	}
	pv, err := preview.Open(topo, statusLine)
	if err != nil {
		fmt.Fprintln(os.Stderr, "terminal:", err)
		os.Exit(1)
	}
	defer pv.Close()

	eng, err = render.NewEngine(applier, topo, elems, pv)
	if err != nil {
		pv.Close()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pv.Events(cancel)

	if *addr != "" {
		ps := portal.New(applier, eng.Status)
		ps.Metrics = eng.Metrics()
		srv := &http.Server{Addr: *addr, Handler: ps.Routes()}
		go ps.Run(ctx)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("http server")
			}
		}()
		defer srv.Close()
	}

	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("render loop")
	}
}
