// Command microbit-sim runs the micro:bit LED display against a software
// timer, either on in-memory ports (with a browser preview) or on host GPIO
// pins through periph.io.
//
// Pin mapping for real pins is read from the config file:
//
//	board: v1
//	gpio:
//	  P0.13: GPIO17
//	  P0.14: GPIO27
//	  ...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/flavioheleno/microbit"
	"github.com/flavioheleno/microbit/blocking"
	"github.com/flavioheleno/microbit/control"
	"github.com/flavioheleno/microbit/image5x5"
	"github.com/flavioheleno/microbit/internal/config"
	"github.com/flavioheleno/microbit/internal/preview"
	"github.com/flavioheleno/microbit/scroll"
	"github.com/flavioheleno/microbit/timer"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		board      = flag.String("board", "v2", "board: v1 | v2")
		align      = flag.String("align", "start", "greyscale alignment: start | end")
		demo       = flag.String("demo", "all", "demo to run: all | greyscale | text | blocking")
		text       = flag.String("text", "HELLO", "text scrolled by the text demo")
		addr       = flag.String("preview", "localhost:8080", "preview listen address, empty to disable")
		level      = flag.String("log", "info", "log level")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("load config")
		}
		cfg = c
	}
	// Flags given on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "board":
			cfg.Board = *board
		case "align":
			cfg.Alignment = *align
		case "demo":
			cfg.Demo = *demo
		case "text":
			cfg.Text = *text
		case "preview":
			cfg.Preview = *addr
		case "log":
			cfg.LogLevel = *level
		}
	})

	lvl, err := cfg.Level()
	if err != nil {
		log.Fatal().Err(err).Msg("log level")
	}
	zerolog.SetGlobalLevel(lvl)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("microbit-sim")
	}
}

func run(cfg *config.Config) error {
	opts, err := cfg.Opts(&log.Logger)
	if err != nil {
		return err
	}
	b := *opts.Board
	tick, err := cfg.TickInterval()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk, err := timer.NewClocked(b.Timing.ClockHz, tick)
	if err != nil {
		return err
	}

	var ports []control.Port
	var pinPorts []*control.PinPort
	if len(cfg.GPIO) != 0 {
		if pinPorts, err = openPins(cfg, b); err != nil {
			return err
		}
		for _, p := range pinPorts {
			ports = append(ports, p)
		}
	} else {
		regs := make([]*control.Register, b.Pinout.Ports())
		for i := range regs {
			regs[i] = &control.Register{}
			ports = append(ports, regs[i])
		}
		if cfg.Preview != "" && cfg.Demo != "blocking" {
			shutdown := servePreview(ctx, cfg.Preview, preview.NewIntegrator(b, regs), clk)
			defer shutdown()
		}
	}

	if cfg.Demo == "blocking" {
		err = scanBlocking(ctx, ports, b)
		reportPins(pinPorts)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	dev, err := microbit.New(clk, ports, opts)
	if err != nil {
		return err
	}
	if err := clk.Start(ctx, func() { dev.HandleDisplayEvent() }); err != nil {
		return err
	}
	log.Info().Stringer("display", dev).Stringer("board", &b).Msg("running")

	err = play(ctx, dev, cfg)
	dev.Halt()
	<-clk.Done()
	reportPins(pinPorts)
	log.Info().Interface("timer", clk.Stats()).Msg("stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func reportPins(ports []*control.PinPort) {
	for i, p := range ports {
		if err := p.Err(); err != nil {
			log.Error().Err(err).Int("port", i).Msg("pin write failed")
		}
	}
}

// scanBlocking shows a flashing heart, scanning the rows on this goroutine.
func scanBlocking(ctx context.Context, ports []control.Port, b microbit.Board) error {
	dev, err := blocking.New(ports, &blocking.Opts{Board: &b, Logger: &log.Logger})
	if err != nil {
		return err
	}
	log.Info().Stringer("display", dev).Msg("running")
	for {
		if err := dev.Show(ctx, heart, time.Second); err != nil {
			return err
		}
		if err := sleep(ctx, 250*time.Millisecond); err != nil {
			return err
		}
	}
}

// openPins resolves the configured periph pins, one PinPort per micro:bit port.
func openPins(cfg *config.Config, b microbit.Board) ([]*control.PinPort, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	names, err := cfg.HostPins(b)
	if err != nil {
		return nil, err
	}
	ports := make([]*control.PinPort, len(names))
	for i, byBit := range names {
		pins := map[uint8]gpio.PinOut{}
		for bit, name := range byBit {
			p := gpioreg.ByName(name)
			if p == nil {
				return nil, fmt.Errorf("gpio %s not found", name)
			}
			pins[bit] = p
		}
		if ports[i], err = control.NewPinPort(pins); err != nil {
			return nil, err
		}
	}
	return ports, nil
}

func servePreview(ctx context.Context, addr string, in *preview.Integrator, clk *timer.Clocked) func() {
	clk.SetObserver(in.Sample)
	hub := preview.NewHub(log.Logger)
	srv := &http.Server{Addr: addr, Handler: hub.Handler()}
	go func() {
		log.Info().Str("addr", addr).Msg("preview listening on /frames")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("preview server")
		}
	}()
	go hub.Run(ctx, in, 50*time.Millisecond)
	return func() {
		hub.Close()
		sctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}
}

func play(ctx context.Context, dev *microbit.Display, cfg *config.Config) error {
	switch cfg.Demo {
	case "greyscale":
		for {
			if err := greyscale(ctx, dev); err != nil {
				return err
			}
		}
	case "text":
		for {
			if err := scroll.Play(ctx, dev, scroll.NewText(cfg.Text), 150*time.Millisecond); err != nil {
				return err
			}
		}
	case "all":
		for {
			if err := greyscale(ctx, dev); err != nil {
				return err
			}
			if err := scroll.Play(ctx, dev, scroll.NewText(cfg.Text), 150*time.Millisecond); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("unknown demo %q", cfg.Demo)
}

var heart = image5x5.NewGreyscale([5][5]uint8{
	{0, 9, 0, 9, 0},
	{9, 5, 9, 5, 9},
	{9, 5, 5, 5, 9},
	{0, 9, 5, 9, 0},
	{0, 0, 9, 0, 0},
})

// greyscale shows a heart, then fades a gradient in and out.
func greyscale(ctx context.Context, dev *microbit.Display) error {
	if err := dev.Show(heart); err != nil {
		return err
	}
	if err := sleep(ctx, time.Second); err != nil {
		return err
	}
	for step := 0; step < 2*image5x5.MaxBrightness; step++ {
		var pix [5][5]uint8
		for y := range pix {
			for x := range pix[y] {
				pix[y][x] = uint8((x + y + step) % (image5x5.MaxBrightness + 1))
			}
		}
		if err := dev.Show(image5x5.NewGreyscale(pix)); err != nil {
			return err
		}
		if err := sleep(ctx, 100*time.Millisecond); err != nil {
			return err
		}
	}
	return dev.Clear()
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
