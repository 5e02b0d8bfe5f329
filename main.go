package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Southclaws/fault/ftag"

	"github.com/PixPMusic/gopher-gesture/internal/actions"
	"github.com/PixPMusic/gopher-gesture/internal/config"
	"github.com/PixPMusic/gopher-gesture/internal/engine"
	"github.com/PixPMusic/gopher-gesture/internal/midi"
	"github.com/PixPMusic/gopher-gesture/internal/monitor"
	"github.com/PixPMusic/gopher-gesture/internal/sink"
	"github.com/PixPMusic/gopher-gesture/internal/startup"
	"github.com/PixPMusic/gopher-gesture/internal/watcher"
)

var logger *slog.Logger

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

type options struct {
	configPath string
	inPort     string
	outPort    string
	listPorts  bool
	dryRun     bool
	debug      bool
	watch      bool
	monitor    bool
	raw        bool
	initConfig bool
	startup    string
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "", "config file (.toml, .yaml or .json); defaults to the user config dir")
	flag.StringVar(&o.inPort, "port", "", "MIDI input port, overrides device.in_port")
	flag.StringVar(&o.outPort, "out", "", "MIDI output port, overrides device.out_port")
	flag.BoolVar(&o.listPorts, "list-ports", false, "list MIDI ports and exit")
	flag.BoolVar(&o.dryRun, "dry-run", false, "log actions instead of performing them")
	flag.BoolVar(&o.debug, "debug", false, "verbose logging")
	flag.BoolVar(&o.watch, "watch", false, "reload the config file when it changes")
	flag.BoolVar(&o.monitor, "monitor", false, "print gestures and actions as they happen")
	flag.BoolVar(&o.raw, "raw", false, "with -monitor, also show pad press and release")
	flag.BoolVar(&o.initConfig, "init", false, "write a starter config and exit")
	flag.StringVar(&o.startup, "startup", "", `"enable" or "disable" launching at login, then exit`)
	flag.Parse()
	return o
}

func main() {
	opts := parseFlags()
	initLogger(opts.debug)

	if err := run(opts); err != nil {
		logger.Error("gopher-gesture failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	path := opts.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	switch {
	case opts.listPorts:
		return listPorts()
	case opts.startup != "":
		return configureStartup(opts, path)
	case opts.initConfig:
		if err := config.Starter().Save(path); err != nil {
			return err
		}
		fmt.Println("wrote", path)
		return nil
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	applyOverrides(cfg, opts)
	if cfg.Device.InPort == "" {
		return errors.New("no MIDI input port: pass -port or set device.in_port (see -list-ports)")
	}

	manager := midi.NewManager()
	defer manager.Close()

	var actionSink actions.Sink
	if opts.dryRun {
		actionSink = sink.NewDryRun(logger)
	} else {
		actionSink = sink.NewSystem(sink.WithMidi(manager, cfg.Device.OutPort), sink.WithLogger(logger))
	}

	eng, err := engine.New(cfg, actionSink,
		engine.WithLogger(logger),
		engine.WithEnvironment(sink.NewEnvironment(nil)),
	)
	if err != nil {
		return err
	}

	var mon *monitor.Monitor
	if opts.monitor {
		mon = monitor.New(os.Stdout)
		mon.ShowRaw = opts.raw
		eng.OnGesture(mon.Gesture)
		eng.OnAction(mon.Action)
	} else {
		eng.OnAction(func(r engine.ActionReport) {
			if !r.Result.OK() {
				logger.Warn("action failed", "mapping", r.Mapping.Label(), "gesture", r.Gesture.String(), "error", r.Result.Err)
			}
		})
	}
	eng.OnModeChange(func(_, to int) {
		c := eng.Config()
		showMode(manager, c, to)
		if mon != nil {
			mon.ModeChange(time.Now(), c.ModeName(to), modeColorString(c, to))
		}
	})

	if err := eng.Start(); err != nil {
		return err
	}
	defer eng.Stop()

	stop, err := manager.Listen(cfg.Device.InPort, eng.HandleRaw)
	if err != nil {
		return engine.TransportError(err)
	}
	stopListening := sync.OnceFunc(stop)
	defer stopListening()
	logger.Info("listening", "port", cfg.Device.InPort, "modes", cfg.ModeCount(), "dry_run", opts.dryRun)
	showMode(manager, cfg, eng.CurrentMode())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if opts.watch {
		w, err := watcher.New(path, func(p string) {
			reload(eng, manager, p, opts)
		}, watcher.WithLogger(logger))
		if err != nil {
			return err
		}
		defer w.Close()
		go w.Run(ctx)
		logger.Info("watching config", "path", w.Path())
	}

	<-ctx.Done()
	logger.Info("shutting down")

	stopListening()
	if err := eng.Stop(); err != nil && !errors.Is(err, engine.ErrNotRunning) {
		return err
	}
	if dev := eng.Config().Device; dev.Indicator != "" {
		if err := manager.ClearMode(dev.OutPort, midi.IndicatorType(dev.Indicator)); err != nil {
			logger.Warn("failed to clear mode indicator", "error", err)
		}
	}
	if mon != nil {
		mon.Summary(eng.Stats())
	}
	return nil
}

// loadConfig reads path, writing the starter config on first run
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if ftag.Get(err) != ftag.NotFound {
		return nil, err
	}

	cfg = config.Starter()
	if err := cfg.Save(path); err != nil {
		logger.Warn("failed to write starter config", "path", path, "error", err)
	} else {
		logger.Info("created starter config", "path", path)
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config, opts options) {
	if opts.inPort != "" {
		cfg.Device.InPort = opts.inPort
	}
	if opts.outPort != "" {
		cfg.Device.OutPort = opts.outPort
	}
}

// reload swaps in the config at path. Port changes need a restart.
func reload(eng *engine.Engine, manager *midi.Manager, path string, opts options) {
	cfg, err := config.Load(path)
	if err != nil {
		logger.Error("config reload failed, keeping previous config", "error", err)
		return
	}
	applyOverrides(cfg, opts)

	prev := eng.Config().Device
	if cfg.Device.InPort != prev.InPort || cfg.Device.OutPort != prev.OutPort {
		logger.Warn("MIDI port changes take effect after restart",
			"in_port", cfg.Device.InPort, "out_port", cfg.Device.OutPort)
	}

	if err := eng.ReloadConfig(cfg); err != nil {
		logger.Error("config rejected, keeping previous config", "error", err)
		return
	}
	showMode(manager, cfg, eng.CurrentMode())
}

func modeColorString(cfg *config.Config, idx int) string {
	if idx < 0 || idx >= len(cfg.Modes) {
		return ""
	}
	return cfg.Modes[idx].Color
}

// showMode lights the device indicator in the mode's color
func showMode(manager *midi.Manager, cfg *config.Config, idx int) {
	kind := midi.IndicatorType(cfg.Device.Indicator)
	if kind == midi.IndicatorNone {
		return
	}

	var color midi.PadColor
	if hex := modeColorString(cfg, idx); hex != "" {
		c, err := midi.ParseColor(hex)
		if err != nil {
			logger.Warn("invalid mode color", "mode", cfg.ModeName(idx), "color", hex, "error", err)
			return
		}
		color = c
	}
	if err := manager.ShowMode(cfg.Device.OutPort, kind, color); err != nil {
		logger.Warn("failed to update mode indicator", "error", err)
	}
}

func listPorts() error {
	manager := midi.NewManager()
	defer manager.Close()

	fmt.Println("MIDI inputs:")
	for _, p := range manager.ListInPorts() {
		fmt.Println("  " + p)
	}
	fmt.Println("MIDI outputs:")
	for _, p := range manager.ListOutPorts() {
		fmt.Println("  " + p)
	}
	return nil
}

func configureStartup(opts options, path string) error {
	switch strings.ToLower(opts.startup) {
	case "enable":
		args := []string{"-config", path}
		if opts.inPort != "" {
			args = append(args, "-port", opts.inPort)
		}
		if opts.watch {
			args = append(args, "-watch")
		}
		if err := startup.Enable(args); err != nil {
			return err
		}
	case "disable":
		if err := startup.Disable(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("-startup must be enable or disable, got %q", opts.startup)
	}
	fmt.Println("launch at login:", startup.IsEnabled())
	return nil
}
