// modelview - Terminal 3D Model Viewer
// View STL and OBJ files in your terminal, optionally textured with a JPEG.
//
// Controls:
//
//	Left drag   - Orbit around the model
//	Right drag  - Pan
//	Scroll, +/- - Zoom in/out
//	O           - Open a model (.obj, .stl)
//	I           - Open a texture (.jpg)
//	R           - Reset view
//	T           - Toggle texture
//	X           - Toggle wireframe
//	B           - Toggle bounding box
//	L           - Light positioning mode (move mouse, click to set, Esc to cancel)
//	?           - Toggle info overlay
//	Esc         - Quit (or cancel light mode)
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/modelview/internal/app"
	"github.com/taigrr/modelview/internal/config"
	"github.com/taigrr/modelview/internal/logging"
)

var version = "dev"

type flags struct {
	texture     string
	configPath  string
	fps         int
	bg          string
	targetSize  float64
	environment string
	snapshot    string
	size        string
	export      string
	logFile     string
	logLevel    string
	logFormat   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "modelview [model.obj|model.stl]",
		Short: "Terminal 3D model viewer",
		Long: "View STL and OBJ models in the terminal with orbit controls, " +
			"an optional JPEG texture and environment lighting.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.texture, "texture", "", "texture image (.jpg)")
	fl.StringVar(&f.configPath, "config", "", "HCL configuration file")
	fl.IntVar(&f.fps, "fps", 60, "target frames per second")
	fl.StringVar(&f.bg, "bg", "", `background color ("R,G,B" or "#rrggbb"); empty uses the environment`)
	fl.Float64Var(&f.targetSize, "target-size", 10, "largest model dimension after loading")
	fl.StringVar(&f.environment, "environment", "city", "lighting environment preset")
	fl.StringVar(&f.snapshot, "snapshot", "", "render one frame to this PNG file and exit")
	fl.StringVar(&f.size, "size", "160x90", "snapshot size in pixels (WxH)")
	fl.StringVar(&f.export, "export", "", "write the normalized model to this GLB file and exit")
	fl.StringVar(&f.logFile, "log-file", "", "write logs to this file")
	fl.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fl.StringVar(&f.logFormat, "log-format", "text", "log format: text or json")
	return cmd
}

func run(cmd *cobra.Command, args []string, f flags) error {
	if _, err := logging.ParseLevel(f.logLevel); err != nil {
		return err
	}
	if err := logging.ValidateFormat(f.logFormat); err != nil {
		return err
	}

	var logOut io.Writer
	if f.logFile != "" {
		file, err := os.OpenFile(f.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer file.Close()
		logOut = file
	}
	log := logging.New(f.logLevel, f.logFormat, logOut)
	ctx := logging.WithLogger(cmd.Context(), log)

	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	opts := app.Options{Config: cfg, TexturePath: f.texture}
	if len(args) > 0 {
		opts.ModelPath = args[0]
	}
	a, err := app.New(ctx, opts)
	if err != nil {
		return err
	}
	log.Debug("starting", "model", opts.ModelPath, "texture", opts.TexturePath,
		"environment", cfg.Lighting.Environment)

	switch {
	case f.export != "":
		return a.Export(f.export)
	case f.snapshot != "":
		w, h, err := parseSize(f.size)
		if err != nil {
			return err
		}
		return a.Snapshot(f.snapshot, w, h)
	default:
		return a.Run(ctx)
	}
}

// loadConfig layers defaults, the config file and explicitly set flags.
func loadConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return cfg, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("fps") {
		cfg.Viewer.FPS = f.fps
	}
	if changed("bg") {
		cfg.Viewer.Background = f.bg
	}
	if changed("target-size") {
		cfg.Viewer.TargetSize = f.targetSize
	}
	if changed("environment") {
		cfg.Lighting.Environment = f.environment
	}
	return cfg, cfg.Validate()
}

func parseSize(s string) (width, height int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q: want WxH", s)
	}
	width, err = strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	height, err = strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q: dimensions must be positive", s)
	}
	return width, height, nil
}
