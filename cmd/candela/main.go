package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-candela/internal/config"
	"github.com/coreman2200/funtimes-candela/internal/flicker"
	"github.com/coreman2200/funtimes-candela/internal/layout"
	"github.com/coreman2200/funtimes-candela/internal/led"
	"github.com/coreman2200/funtimes-candela/internal/portal"
	"github.com/coreman2200/funtimes-candela/internal/render"
	"github.com/coreman2200/funtimes-candela/internal/selftest"
)

func main() {
	// ---- Flags (config.yaml overrides when present) ----
	var (
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		driver     = flag.String("driver", "sim", "driver: spi | console | sim")
		count      = flag.Int("count", 12, "elements on a single strip when no config is found")
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		testKind   = flag.String("selftest", "", "run a wiring test first: index_sweep | rgb_channels | group_sweep")
		mirror     = flag.Bool("mirror", false, "also summarize frames in the log (sim driver) alongside hardware output")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Load config.yaml (optional) ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
		cfg = config.Default()
		cfg.Addr = *addr
		cfg.Driver = *driver
		cfg.Topology.Groups = []layout.Group{{Name: "strip", Count: *count}}
	}
	if *simOnly {
		cfg.Driver = "sim"
	}
	kind, err := selftest.ParseKind(*testKind)
	if err != nil {
		log.Fatal().Err(err).Msg("bad -selftest")
	}

	// ---- Configuration state ----
	applier, err := config.NewApplier(cfg.Effect)
	if err != nil {
		log.Warn().Err(err).Msg("stored effect settings rejected; using defaults")
		applier, _ = config.NewApplier(config.DefaultRaw())
	}
	topo := cfg.Topology.Layout()

	gen, err := flicker.ByName(cfg.Flicker.Generator)
	if err != nil {
		log.Fatal().Err(err).Msg("flicker generator")
	}
	seed := cfg.Topology.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	elems := render.NewElements(topo, applier.Active(), render.ElementOptions{
		Generator:  gen,
		Brightness: cfg.Flicker.Brightness,
		Saturation: cfg.Flicker.Saturation,
		RandomHue:  cfg.Topology.RestingHue == "random",
		Seed:       seed,
	})

	// ---- Driver selection ----
	drv := openDriver(cfg, topo)
	if *mirror && cfg.Driver != "sim" {
		drv = led.Multi{drv, led.NewSim()}
	}
	defer func() {
		if err := drv.Close(); err != nil {
			log.Warn().Err(err).Msg("driver close")
		}
	}()

	reg := metrics.NewRegistry()
	version := metrics.GetOrRegisterGauge("config.version", reg)
	applier.OnApply(func(a *config.Active) { version.Update(int64(a.Version)) })

	eng, err := render.NewEngine(applier, topo, elems, drv,
		render.WithPoll(time.Duration(cfg.PollMS)*time.Millisecond),
		render.WithRegistry(reg))
	if err != nil {
		log.Fatal().Err(err).Msg("engine")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if kind != selftest.None {
		err := selftest.Run(ctx, selftest.Plan{Kind: kind}, topo, drv, 250*time.Millisecond, applier.Active().BrightnessScale)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Msg("self-test failed")
		}
	}

	// ---- HTTP ----
	ps := portal.New(applier, eng.Status)
	ps.Metrics = reg
	ps.Store = portal.NewFileStore(*configPath, cfg)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      ps.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go ps.Run(ctx)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("driver", cfg.Driver).Int("elements", topo.Count()).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Run until signalled ----
	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("render loop")
	}
	log.Info().Msg("shutting down")

	shCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)
}

func openDriver(cfg *config.File, topo layout.Topology) led.Driver {
	switch cfg.Driver {
	case "sim":
		return led.NewSim()
	case "console":
		return led.NewConsole(topo.Count())
	case "spi":
		if _, err := host.Init(); err != nil {
			log.Warn().Err(err).Msg("periph host init failed; falling back to SIM")
			return led.NewSim()
		}
		freq := led.DefaultFreq
		if cfg.SPI.SpeedHz > 0 {
			freq = physic.Frequency(cfg.SPI.SpeedHz) * physic.Hertz
		}
		power := led.Power{WhiteCap: cfg.Power.WhiteCap, LimitAmps: cfg.Power.LimitAmps, ChanMA: cfg.Power.ChanMA}
		d, err := led.NewSPI(topo, freq, power)
		if err != nil {
			log.Warn().Err(err).
				Str("driver", "spi").
				Int("groups", len(topo.Groups)).
				Stringer("freq", freq).
				Msg("SPI init failed; falling back to SIM")
			return led.NewSim()
		}
		return d
	default:
		log.Warn().Str("driver", cfg.Driver).Msg("unknown driver; using SIM")
		return led.NewSim()
	}
}
