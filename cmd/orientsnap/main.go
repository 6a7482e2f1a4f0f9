// Command orientsnap renders a single orientation frame to a WebP file.
// The quaternion comes from a device stream sampled for a short window,
// or directly from the -quat flag.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"unicorn-orientviz/internal/config"
	"unicorn-orientviz/internal/device"
	"unicorn-orientviz/internal/imu"
	"unicorn-orientviz/internal/model"
	"unicorn-orientviz/internal/orient"
	"unicorn-orientviz/internal/pipeline"
	"unicorn-orientviz/internal/raster"
	"unicorn-orientviz/internal/texture"
	"unicorn-orientviz/internal/widget"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	address := flag.String("address", "", "Device address, or 'simulator' (default: simulator)")
	convName := flag.String("convention", "", "Quaternion convention (default: reordered-implicit)")
	output := flag.String("output", "", "Output WebP path (default: orientation.webp)")
	quatFlag := flag.String("quat", "", "Render this sample instead of streaming, e.g. '1,0,0,0'")
	seconds := flag.Float64("seconds", 2, "Stream settle time before the snapshot")

	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		Address:    *address,
		Convention: *convName,
		Output:     *output,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	conv, _ := orient.ConventionByName(cfg.Convention)

	var tex *image.NRGBA
	if cfg.Texture != "" {
		var err error
		tex, err = texture.Load(cfg.Texture)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading texture: %v\n", err)
			os.Exit(1)
		}
	}

	renderer := raster.New()
	renderer.Supersample = cfg.Supersample

	m := model.New(cfg.Width, cfg.Height)
	w, err := widget.Mount(m, widget.Config{
		Convention: conv,
		Renderer:   renderer,
		Texture:    tex,
		Logger:     log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *quatFlag != "" {
		sample, err := parseQuat(*quatFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		m.Publish(sample, 0)
	} else {
		streamInto(m, cfg, *seconds, log)
	}

	if err := writeWebP(cfg.Output, w.Frame()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Info("snapshot written", "path", cfg.Output,
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height))
}

// streamInto runs the stream pipeline for the settle window so the
// orientation filter converges before the frame is taken.
func streamInto(m *model.Model, cfg config.Config, seconds float64, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(seconds*float64(time.Second)))
	defer cancel()

	var src device.Source
	if cfg.Address == "" || cfg.Address == device.SimulatorAddress {
		log.Info("no device address, using simulator")
		src = device.NewSimulator(cfg.NSamp)
	} else {
		conn, err := device.NewConnection(device.Settings{
			Address:       cfg.Address,
			NSamp:         cfg.NSamp,
			RetryInterval: time.Second,
		}, device.RFCOMMDialer(), log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		src = conn
	}

	go src.Run(ctx)
	p := &pipeline.Pipeline{
		Source: src,
		Filter: imu.New(imu.DefaultSettings()),
		Model:  m,
		Log:    log,
	}
	p.Run(ctx)
}

// parseQuat reads a 4-component comma-separated sample.
func parseQuat(s string) ([4]float64, error) {
	var out [4]float64
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return out, fmt.Errorf("quat needs 4 components, got %d", len(parts))
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return out, fmt.Errorf("quat component %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func writeWebP(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("WebP encode: %w", err)
	}
	return nil
}
