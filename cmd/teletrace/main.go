package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/integrii/flaggy"
	"gopkg.in/yaml.v3"

	"github.com/noriah/teletrace"
	"github.com/noriah/teletrace/config"
	"github.com/noriah/teletrace/graphic"
	"github.com/noriah/teletrace/graphic/gpu"
	"github.com/noriah/teletrace/graphic/raster"
	"github.com/noriah/teletrace/telemetry"

	_ "github.com/noriah/teletrace/telemetry/all"
)

// AppName is the app name
const AppName = "teletrace"

// AppDesc is the app description
const AppDesc = "Racing simulator telemetry overlay"

// AppSite is the app website
const AppSite = "https://github.com/noriah/teletrace"

var version = "unknown"

func main() {
	log.SetFlags(0)

	f := newZeroFlags()

	if doFlags(&f) {
		return
	}

	chk(f.validate(), "invalid flags")

	level, err := parseLogLevel(f.logLevel)
	chk(err, "invalid flags")

	// the terminal output owns stdout
	var logOut io.Writer = os.Stdout
	if f.output == outputTerminal {
		logOut = io.Discard
	}

	logger := setupLogger(logOut, level)

	store := config.FileStore{Path: f.configPath}

	cfg, err := config.Open(store)
	chk(err, "failed to load config")

	src, err := telemetry.Open(f.backend, telemetry.Params{
		Path:       f.file,
		SampleRate: float64(cfg.SampleRate),
		Loop:       f.loop,
	})
	chk(err, "failed to open source")

	if f.geometry {
		cfg.PreferCompositor = false
	}

	opts := teletrace.Options{
		Config: cfg,
		Store:  store,
		Source: src,
		Logger: logger.With("backend", f.backend),
	}

	switch f.output {
	case outputWindow:
		opts.Allocator = gpu.Allocator{}
	default:
		opts.Allocator = raster.Allocator{}
	}

	overlay, err := teletrace.New(opts)
	chk(err, "failed to start overlay")

	defer func() {
		chk(overlay.Close(), "failed to close overlay")
	}()

	// Root Context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	switch f.output {
	case outputWindow:
		err = gpu.Run(overlay, AppName, overlay.Control)
	case outputTerminal:
		err = runTerminal(ctx, overlay, f.tickRate)
	case outputHeadless:
		err = runHeadless(ctx, overlay, f)
	}

	chk(err, "failed to run "+f.output)
}

func doFlags(f *flags) bool {
	parser := flaggy.NewParser(AppName)
	parser.Description = AppDesc
	parser.AdditionalHelpPrepend = AppSite
	parser.Version = version

	listSourcesCmd := flaggy.Subcommand{
		Name:                 "list-sources",
		ShortName:            "ls",
		Description:          "list all telemetry sources",
		AdditionalHelpAppend: "\nuse the full name after the '-'",
	}

	parser.AttachSubcommand(&listSourcesCmd, 1)

	defaultsCmd := flaggy.Subcommand{
		Name:        "defaults",
		ShortName:   "d",
		Description: "print the default config",
	}

	parser.AttachSubcommand(&defaultsCmd, 1)

	parser.String(&f.backend, "b", "backend", "telemetry source name")
	parser.String(&f.file, "f", "file", "recording for the replay source")
	parser.Bool(&f.loop, "l", "loop", "restart the recording when it ends")
	parser.String(&f.configPath, "c", "config", "config file")
	parser.String(&f.output, "o", "output", "output (window, terminal, headless)")
	parser.Bool(&f.geometry, "g", "geometry", "draw traces as geometry")
	parser.Int(&f.ticks, "n", "ticks", "number of ticks of a headless run")
	parser.Int(&f.tickRate, "r", "rate", "host tick rate for terminal and headless runs")
	parser.String(&f.png, "p", "png", "write the last headless frame to this file")
	parser.String(&f.logLevel, "v", "log-level", "log level (error, warn, info, debug)")

	chk(parser.Parse(), "failed to parse arguments")

	switch {
	case listSourcesCmd.Used:
		for _, name := range telemetry.BackendNames() {
			fmt.Printf("- %s\n", name)
		}

		return true

	case defaultsCmd.Used:
		cfg := config.NewZeroConfig()
		out, err := yaml.Marshal(map[string]any(cfg.Values()))
		chk(err, "failed to encode config")

		fmt.Print(string(out))

		return true
	}

	return false
}

// present copies a frame onto a fresh raster sized for the overlay.
func present(overlay *teletrace.Overlay, img *raster.Image) (*raster.Image, error) {
	w, h := overlay.Size()
	if img == nil {
		img = raster.New(w, h)
	} else if iw, ih := img.Size(); iw != w || ih != h {
		img.Dispose()
		img = raster.New(w, h)
	}

	img.Clear()
	img.SetBlend(graphic.BlendAlpha)

	return img, overlay.Render(img, 0)
}

func chk(err error, wrap string) {
	if err != nil {
		log.Fatalln(wrap+": ", err)
	}
}
