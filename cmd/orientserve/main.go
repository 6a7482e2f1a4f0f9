// Command orientserve runs the web dashboard: it streams from a Unicorn
// headset (or the built-in simulator), renders the orientation cuboid,
// and serves the live view over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"unicorn-orientviz/internal/config"
	"unicorn-orientviz/internal/dashboard"
	"unicorn-orientviz/internal/device"
	"unicorn-orientviz/internal/discovery"
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
	port := flag.Int("port", 0, "Dashboard HTTP port (default: 8050)")
	nsamp := flag.Int("n_samp", 0, "Frames per block (default: 50)")
	convName := flag.String("convention", "", "Quaternion convention (default: reordered-implicit)")
	scan := flag.Bool("scan", false, "Scan for nearby devices and exit")

	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	if *scan {
		runScan(log)
		return
	}

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
		Port:       *port,
		Convention: *convName,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := newSource(cfg, log)
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

	dash := dashboard.New(log)
	tracker := status.NewTracker(0)

	renderer := raster.New()
	renderer.Supersample = cfg.Supersample

	m := model.New(cfg.Width, cfg.Height)
	_, err := widget.Mount(m, widget.Config{
		Convention: conv,
		Renderer:   renderer,
		Texture:    tex,
		Logger:     log,
		Sink: func(frame *image.NRGBA) {
			if err := dash.PublishFrame(frame); err != nil {
				log.Warn("frame publish failed", "err", err)
			}
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	go src.Run(ctx)
	go func() {
		p := &pipeline.Pipeline{
			Source:  src,
			Filter:  imu.New(imu.DefaultSettings()),
			Model:   m,
			Tracker: tracker,
			Log:     log,
		}
		if err := p.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("pipeline stopped", "err", err)
		}
	}()
	go publishStatus(ctx, dash, tracker)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: dash.Handler(),
	}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutCtx)
	}()

	log.Info("dashboard listening", "port", cfg.Port, "address", cfg.Address, "convention", cfg.Convention)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newSource picks the simulator unless a real address is configured.
func newSource(cfg config.Config, log *slog.Logger) device.Source {
	if cfg.Address == "" || cfg.Address == device.SimulatorAddress {
		log.Info("no device address, using simulator")
		return device.NewSimulator(cfg.NSamp)
	}
	conn, err := device.NewConnection(device.Settings{
		Address:       cfg.Address,
		NSamp:         cfg.NSamp,
		RetryInterval: time.Minute,
	}, device.RFCOMMDialer(), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return conn
}

// publishStatus pushes a health snapshot to the dashboard once a second.
func publishStatus(ctx context.Context, dash *dashboard.Server, tracker *status.Tracker) {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			dash.PublishStatus(tracker.Snapshot())
		}
	}
}

// runScan lists nearby devices, Unicorns first.
func runScan(log *slog.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	devices, err := discovery.Scan(ctx, discovery.DefaultScanWindow, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(devices) == 0 {
		fmt.Println("No devices found.")
		return
	}
	for _, d := range discovery.Unicorns(devices) {
		fmt.Printf("%s  %s  (unicorn)\n", d.Address, d.Name)
	}
	for _, d := range devices {
		if !d.IsUnicorn() {
			fmt.Printf("%s  %s\n", d.Address, d.Name)
		}
	}
}
