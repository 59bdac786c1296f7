package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"midp/app"
	"midp/config"
	"midp/hal"
	"midp/internal/buildinfo"
	"midp/internal/logging"
	"midp/midlet"
	_ "midp/midlets/cube"
	_ "midp/midlets/snake"
)

const builtinPrefix = "builtin:"

type options struct {
	configPath string
	jad        string
	appID      string
	host       string
	logLevel   string
	logFile    string
	hz         int
	ticks      uint64
	scale      int
	showFaults bool
	list       bool
	version    bool

	width, height int
	phone         string
	fps           int
	rotate        bool
	sound         bool
	queuedPaint   bool
	textureFilter bool
	main          string
}

func main() {
	var o options
	pflag.StringVarP(&o.configPath, "config", "c", "", "YAML config file; created when settings are saved.")
	pflag.StringVar(&o.jad, "jad", "", "JAD descriptor whose attributes override the manifest.")
	pflag.StringVar(&o.appID, "app-id", "", "Application id; derived from MIDlet-1 when empty.")
	pflag.StringVar(&o.host, "host", "window", "Host: window, headless or terminal.")
	pflag.StringVar(&o.logLevel, "log-level", "info", "Log level: debug, info, warn or error.")
	pflag.StringVar(&o.logFile, "log-file", "", "Write logs to this file instead of stderr.")
	pflag.IntVar(&o.hz, "hz", 60, "Tick rate of the headless and terminal hosts.")
	pflag.Uint64Var(&o.ticks, "ticks", 0, "Stop the headless host after N ticks (0 = run forever).")
	pflag.IntVar(&o.scale, "scale", 2, "Window scale factor.")
	pflag.BoolVar(&o.showFaults, "show-faults", false, "Draw recovered event handler faults on screen.")
	pflag.BoolVar(&o.list, "list", false, "List the built-in MIDlets and exit.")
	pflag.BoolVar(&o.version, "version", false, "Print the version and exit.")

	pflag.IntVarP(&o.width, "width", "W", 0, "LCD width.")
	pflag.IntVarP(&o.height, "height", "H", 0, "LCD height.")
	pflag.StringVarP(&o.phone, "phone", "p", "", "Keyset: Standard, Nokia, Siemens, Motorola or SonyEricsson.")
	pflag.IntVar(&o.fps, "fps", 0, "Frame cap (0 = unlimited).")
	pflag.BoolVar(&o.rotate, "rotate", false, "Rotate the display.")
	pflag.BoolVar(&o.sound, "sound", true, "Play sound.")
	pflag.BoolVar(&o.queuedPaint, "queued-paint", false, "Defer canvas repaints to the event queue.")
	pflag.BoolVar(&o.textureFilter, "texture-filter", false, "Filter 3D textures.")
	pflag.StringVar(&o.main, "main", "", "Entry point class overriding MIDlet-1.")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: midp [flags] <suite.jar | suite-dir | %s<class>>\n", builtinPrefix)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if o.version {
		fmt.Println(buildinfo.Short())
		return
	}
	if o.list {
		for _, c := range midlet.Classes() {
			fmt.Println(builtinPrefix + c)
		}
		return
	}
	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	closeLog, err := setupLogging(o)
	if err != nil {
		fatalf("log: %v", err)
	}
	defer closeLog()

	if err := run(o, pflag.Arg(0)); err != nil {
		logging.Logger().Error("exit", "error", err)
		fmt.Fprintln(os.Stderr, err)
		closeLog()
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

func setupLogging(o options) (func(), error) {
	var w io.Writer = os.Stderr
	closeFn := func() {}
	if o.logFile != "" {
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		w = f
		closeFn = func() { f.Close() }
	} else if o.host == "terminal" {
		w = io.Discard
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: logging.ParseLevel(o.logLevel)})
	logging.SetLogger(slog.New(h))
	return closeFn, nil
}

func openSuite(arg, appID string) (*midlet.Suite, error) {
	if class, ok := strings.CutPrefix(arg, builtinPrefix); ok {
		return midlet.Builtin(class), nil
	}
	info, err := os.Stat(arg)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return midlet.OpenDir(arg, appID)
	}
	return midlet.OpenJAR(arg, appID)
}

// applyFlags lays explicitly set flags over the loaded settings.
func applyFlags(s *config.Settings, o options) {
	changed := pflag.CommandLine.Changed
	if changed("width") {
		s.Width = o.width
	}
	if changed("height") {
		s.Height = o.height
	}
	if changed("phone") {
		s.Phone = config.Phone(o.phone)
	}
	if changed("fps") {
		s.FPS = o.fps
	}
	if changed("rotate") {
		s.Rotate = o.rotate
	}
	if changed("sound") {
		s.Sound = o.sound
	}
	if changed("queued-paint") {
		s.QueuedPaint = o.queuedPaint
	}
	if changed("texture-filter") {
		s.TextureFilter = o.textureFilter
	}
	if changed("main") {
		s.Main = o.main
	}
}

func run(o options, arg string) error {
	suite, err := openSuite(arg, o.appID)
	if err != nil {
		return fmt.Errorf("open suite: %w", err)
	}
	defer suite.Close()

	if o.jad != "" {
		f, err := os.Open(o.jad)
		if err != nil {
			return fmt.Errorf("open jad: %w", err)
		}
		props := map[string]string{}
		err = midlet.ParseDescriptor(f, props)
		f.Close()
		if err != nil {
			return err
		}
		suite.SetProperties(props)
	}

	cfgPath := o.configPath
	if cfgPath == "" && suite.AppID() != "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfgPath = filepath.Join(dir, "midp", suite.AppID()+".yaml")
			os.MkdirAll(filepath.Dir(cfgPath), 0o755)
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	applyFlags(&cfg.Settings, o)
	if err := cfg.Settings.Validate(); err != nil {
		return err
	}

	host, err := newHost(o, cfg.Settings, suite.Name())
	if err != nil {
		return err
	}

	sys, err := app.New(host, app.Config{
		Runtime:    cfg,
		ConfigPath: cfgPath,
		Suite:      suite,
		ShowFaults: o.showFaults,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := sys.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newHost(o options, s config.Settings, title string) (hal.Host, error) {
	w, h := s.CanvasSize()
	switch o.host {
	case "window":
		depth := 0
		if s.DGFormat == 565 {
			depth = 16
		}
		return hal.NewWindow(hal.WindowConfig{Title: title, Width: w, Height: h, Scale: o.scale, Depth: depth})
	case "headless":
		return hal.NewHeadless(hal.HeadlessConfig{Width: w, Height: h, Hz: o.hz, Ticks: o.ticks}), nil
	case "terminal":
		return hal.NewTerminal(hal.TerminalConfig{Width: w, Height: h, Hz: o.hz})
	}
	return nil, fmt.Errorf("unknown host %q", o.host)
}
