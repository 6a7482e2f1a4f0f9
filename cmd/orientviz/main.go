// Command orientviz opens a desktop window showing the live orientation
// cuboid for a Unicorn headset (or the built-in simulator).
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"unicorn-orientviz/internal/config"
	"unicorn-orientviz/internal/device"
	"unicorn-orientviz/internal/imu"
	"unicorn-orientviz/internal/model"
	"unicorn-orientviz/internal/orient"
	"unicorn-orientviz/internal/pipeline"
	"unicorn-orientviz/internal/raster"
	"unicorn-orientviz/internal/status"
	"unicorn-orientviz/internal/texture"
	"unicorn-orientviz/internal/widget"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	address := flag.String("address", "", "Device address, or 'simulator' (default: simulator)")
	nsamp := flag.Int("n_samp", 0, "Frames per block (default: 50)")
	convName := flag.String("convention", "", "Quaternion convention (default: reordered-implicit)")

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
		NSamp:      *nsamp,
		Convention: *convName,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	g := &game{width: cfg.Width, height: cfg.Height, tracker: status.NewTracker(0)}

	m := model.New(cfg.Width, cfg.Height)
	_, err := widget.Mount(m, widget.Config{
		Convention: conv,
		Renderer:   renderer,
		Texture:    tex,
		Logger:     log,
		Sink:       g.setFrame,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var src device.Source
	if cfg.Address == "" || cfg.Address == device.SimulatorAddress {
		log.Info("no device address, using simulator")
		src = device.NewSimulator(cfg.NSamp)
	} else {
		conn, err := device.NewConnection(device.Settings{
			Address:       cfg.Address,
			NSamp:         cfg.NSamp,
			RetryInterval: time.Minute,
		}, device.RFCOMMDialer(), log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		src = conn
	}

	go src.Run(ctx)
	go func() {
		p := &pipeline.Pipeline{
			Source:  src,
			Filter:  imu.New(imu.DefaultSettings()),
			Model:   m,
			Tracker: g.tracker,
			Log:     log,
		}
		if err := p.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("pipeline stopped", "err", err)
		}
	}()

	ebiten.SetWindowTitle("Unicorn Orientation")
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(g); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// game displays the latest rendered frame. The pipeline goroutine swaps
// frames in through setFrame; Draw only ever reads the swapped pointer.
type game struct {
	width, height int
	tracker       *status.Tracker

	mu    sync.Mutex
	frame *image.NRGBA

	img *ebiten.Image
}

func (g *game) setFrame(frame *image.NRGBA) {
	g.mu.Lock()
	g.frame = frame
	g.mu.Unlock()
}

func (g *game) Update() error {
	snap := g.tracker.Snapshot()
	title := "Unicorn Orientation"
	if snap.Streaming {
		title = fmt.Sprintf("%s · battery %d%% · dropped %d",
			title, int(snap.Battery*100), snap.Dropped)
	} else if snap.Received > 0 {
		title += " · disconnected"
	}
	ebiten.SetWindowTitle(title)
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x11, 0x11, 0x11, 0xFF})

	g.mu.Lock()
	frame := g.frame
	g.mu.Unlock()
	if frame == nil {
		return
	}

	if g.img == nil {
		g.img = ebiten.NewImage(g.width, g.height)
	}
	// Frame pixels are either fully transparent or fully opaque, so the
	// non-premultiplied buffer can be written as-is.
	g.img.WritePixels(frame.Pix)
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
