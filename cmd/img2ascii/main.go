package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	pb "github.com/cheggaaa/pb/v3"
	"github.com/jessevdk/go-flags"
	"github.com/spf13/viper"

	"github.com/wbrown/img2ascii"
	"github.com/wbrown/img2ascii/imageutil"
)

// ErrNoInput is returned when neither --input nor a positional path is given.
var ErrNoInput = errors.New("missing input image, use --input or pass a path")

type Options struct {
	Input         string  `short:"i" long:"input" description:"Path to the input image"`
	Output        string  `short:"o" long:"output" description:"Write the text to this file instead of stdout"`
	PNG           string  `long:"png" description:"Also write a preview PNG drawn with the glyph bitmaps"`
	Width         int     `short:"w" long:"width" description:"Width of the edge map in pixels" default:"150"`
	Tile          int     `short:"t" long:"tile" description:"Square tile size in edge-map pixels" default:"4"`
	TileWidth     int     `long:"tile-width" description:"Tile width, overrides --tile"`
	TileHeight    int     `long:"tile-height" description:"Tile height, overrides --tile"`
	Glyph         int     `short:"g" long:"glyph" description:"Glyph bitmap size in pixels" default:"32"`
	Font          string  `short:"f" long:"font" description:"TrueType or OpenType font file (default: embedded Go Mono)"`
	FontSize      float64 `long:"font-size" description:"Font size in pixels" default:"16"`
	Alphabet      string  `short:"a" long:"alphabet" description:"Candidate characters"`
	Aspect        float64 `long:"aspect" description:"Character height to width correction" default:"0.5"`
	Trees         int     `long:"trees" description:"Number of trees in the glyph index" default:"50"`
	Search        int     `long:"search" description:"Candidates inspected per tile" default:"1000"`
	Exact         bool    `long:"exact" description:"Use exhaustive search instead of the tree index"`
	CannyLow      float64 `long:"canny-low" description:"Lower edge hysteresis threshold" default:"100"`
	CannyHigh     float64 `long:"canny-high" description:"Upper edge hysteresis threshold" default:"300"`
	Interpolation string  `long:"interpolation" description:"Resampling filter: cubic, linear, nearest or area" default:"cubic"`
	GlyphDebug    string  `long:"glyph-debug" description:"Dump every glyph bitmap into this directory"`
	Config        string  `short:"c" long:"config" description:"Config file (YAML, TOML or JSON)"`
	Progress      bool    `long:"progress" description:"Show a progress bar on stderr"`
	Verbose       bool    `short:"v" long:"verbose" description:"Log timings and index details"`
}

func main() {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.Default)
	args, err := parser.Parse()
	if err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(2)
	}
	if opts.Input == "" && len(args) > 0 {
		opts.Input = args[0]
	}

	if err := loadConfig(parser, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	img2ascii.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.Error("failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig fills options that were not given on the command line from
// the config file and IMG2ASCII_* environment variables.
func loadConfig(parser *flags.Parser, opts *Options) error {
	v := viper.New()
	v.SetEnvPrefix("IMG2ASCII")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if opts.Config != "" {
		v.SetConfigFile(opts.Config)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}

	settings := []struct {
		name string
		set  func(key string)
	}{
		{"input", func(k string) { opts.Input = v.GetString(k) }},
		{"output", func(k string) { opts.Output = v.GetString(k) }},
		{"png", func(k string) { opts.PNG = v.GetString(k) }},
		{"width", func(k string) { opts.Width = v.GetInt(k) }},
		{"tile", func(k string) { opts.Tile = v.GetInt(k) }},
		{"tile-width", func(k string) { opts.TileWidth = v.GetInt(k) }},
		{"tile-height", func(k string) { opts.TileHeight = v.GetInt(k) }},
		{"glyph", func(k string) { opts.Glyph = v.GetInt(k) }},
		{"font", func(k string) { opts.Font = v.GetString(k) }},
		{"font-size", func(k string) { opts.FontSize = v.GetFloat64(k) }},
		{"alphabet", func(k string) { opts.Alphabet = v.GetString(k) }},
		{"aspect", func(k string) { opts.Aspect = v.GetFloat64(k) }},
		{"trees", func(k string) { opts.Trees = v.GetInt(k) }},
		{"search", func(k string) { opts.Search = v.GetInt(k) }},
		{"exact", func(k string) { opts.Exact = v.GetBool(k) }},
		{"canny-low", func(k string) { opts.CannyLow = v.GetFloat64(k) }},
		{"canny-high", func(k string) { opts.CannyHigh = v.GetFloat64(k) }},
		{"interpolation", func(k string) { opts.Interpolation = v.GetString(k) }},
		{"glyph-debug", func(k string) { opts.GlyphDebug = v.GetString(k) }},
		{"progress", func(k string) { opts.Progress = v.GetBool(k) }},
		{"verbose", func(k string) { opts.Verbose = v.GetBool(k) }},
	}
	for _, s := range settings {
		if o := parser.FindOptionByLongName(s.name); o != nil && o.IsSet() && !o.IsSetDefault() {
			continue
		}
		if opts.Input != "" && s.name == "input" {
			continue
		}
		if v.IsSet(s.name) {
			s.set(s.name)
		}
	}
	return nil
}

func run(ctx context.Context, opts *Options, logger *slog.Logger) error {
	if opts.Input == "" {
		return ErrNoInput
	}
	interp, err := imageutil.ParseInterpolation(opts.Interpolation)
	if err != nil {
		return err
	}

	tile := image.Pt(opts.Tile, opts.Tile)
	if opts.TileWidth > 0 {
		tile.X = opts.TileWidth
	}
	if opts.TileHeight > 0 {
		tile.Y = opts.TileHeight
	}

	alphabet := img2ascii.ParseAlphabet(img2ascii.DefaultAlphabet)
	if opts.Alphabet != "" {
		alphabet = img2ascii.ParseAlphabet(opts.Alphabet)
	}

	engineOpts := []img2ascii.Option{
		img2ascii.WithTrees(opts.Trees),
		img2ascii.WithSearchEffort(opts.Search),
		img2ascii.WithCannyThresholds(opts.CannyLow, opts.CannyHigh),
		img2ascii.WithInterpolation(interp),
		img2ascii.WithGlyphDebugDir(opts.GlyphDebug),
		img2ascii.WithLogger(logger),
	}
	if opts.Exact {
		engineOpts = append(engineOpts, img2ascii.WithExactSearch())
	}

	var bar *pb.ProgressBar
	if opts.Progress {
		bar = pb.New(0).SetWriter(os.Stderr)
		engineOpts = append(engineOpts, img2ascii.WithProgress(func(done, total int) {
			bar.SetTotal(int64(total))
			bar.Increment()
		}))
	}

	start := time.Now()
	engine, err := img2ascii.Configure(
		alphabet.Runes(),
		opts.Font,
		opts.FontSize,
		image.Pt(opts.Glyph, opts.Glyph),
		opts.Aspect,
		engineOpts...,
	)
	if err != nil {
		return err
	}
	if err := engine.Prepare(); err != nil {
		return err
	}
	initTime := time.Since(start)
	cfg := engine.Config()
	logger.Debug("engine ready",
		"alphabet", engine.Library().Alphabet().String(),
		"glyph", cfg.GlyphSize,
		"trees", cfg.Trees,
		"exact", cfg.Exact,
		"interpolation", cfg.Interpolation,
		"init", initTime)

	img, err := imageutil.LoadImage(opts.Input)
	if err != nil {
		return err
	}

	if bar != nil {
		bar.Start()
	}
	grid, err := engine.RenderGrid(ctx, img, opts.Width, tile)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}
	text := grid.String()

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(text+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		logger.Info("wrote text", "path", opts.Output)
	} else {
		fmt.Println(text)
	}

	if opts.PNG != "" {
		if err := imageutil.SavePNG(engine.Preview(grid), opts.PNG); err != nil {
			return err
		}
		logger.Info("wrote preview", "path", opts.PNG)
	}

	stats := engine.CacheStats()
	logger.Debug("done",
		"rows", grid.Rows(),
		"cols", grid.Cols(),
		"init", initTime,
		"total", time.Since(start),
		"cache_hits", stats.Hits,
		"cache_misses", stats.Misses)
	return nil
}
