// Command agendacal runs the agenda calendar daemon: it serves the
// rendered agenda over HTTP and, on a cron schedule, captures it,
// packs it into panel planes, and pushes it to the e-paper display.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"agendacal/internal/capture"
	"agendacal/internal/config"
	"agendacal/internal/convert"
	"agendacal/internal/epd"
	appLog "agendacal/internal/log"
	"agendacal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	renderOnly bool
	dump       bool
	debug      bool
}

func main() {
	appLog.Info("agendacal starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"locale", conf.Locale,
		"refresh", conf.RefreshCron,
		"ics_count", len(conf.ICS),
		"once", flags.once,
		"render_only", flags.renderOnly,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	// The web server must be up before the capture step can screenshot it.
	go func() {
		if err := web.StartServer(ctx, conf, flags.debug); err != nil {
			appLog.Error("web server exited", err)
			cancel()
		}
	}()

	if flags.once {
		// Give the server a moment to bind before capturing.
		time.Sleep(1 * time.Second)
		if err := runCycle(ctx, conf, flags); err != nil {
			appLog.Error("refresh cycle failed", err)
			os.Exit(1)
		}
		return
	}

	sched := cron.New()
	if _, err := sched.AddFunc(conf.RefreshCron, func() {
		if err := runCycle(ctx, conf, flags); err != nil {
			appLog.Error("refresh cycle failed", err)
		}
	}); err != nil {
		appLog.Error("invalid refresh cron expression", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	<-ctx.Done()
	// Give cleanup hooks (EPD sleep, etc.) a moment.
	time.Sleep(100 * time.Millisecond)
	appLog.Info("agendacal exiting")
}

// runCycle performs one capture(+display) cycle: screenshot the agenda
// page, optionally pack the frame and push it to the panel.
func runCycle(ctx context.Context, conf *config.Config, flags flagConfig) error {
	stateDir := "/var/lib/agendacal"
	if flags.debug {
		stateDir = "./cache"
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("state dir: %w", err)
	}
	previewPath := filepath.Join(stateDir, "preview.png")

	err := capture.AgendaPNG(ctx, capture.Options{
		URL:        "http://" + conf.Listen + "/agenda",
		OutputPath: previewPath,
		Width:      int(conf.Agenda.Width),
		Height:     int(conf.Agenda.Height),
	})
	if err != nil {
		return err
	}
	appLog.Info("agenda captured", "path", previewPath)

	if flags.renderOnly {
		return nil
	}

	black, red, err := packPreview(previewPath)
	if err != nil {
		return err
	}

	if flags.dump {
		if err := os.WriteFile(filepath.Join(stateDir, "black.bin"), black, 0o644); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(stateDir, "red.bin"), red, 0o644); err != nil {
			return err
		}
	}

	drv, err := epd.Init(ctx)
	if err != nil {
		// No panel (development machine): the capture still serves as the
		// preview, so this is not fatal.
		appLog.Error("display init failed; skipping panel update", err)
		return nil
	}
	defer drv.Close()

	if err := drv.Display(ctx, black, red); err != nil {
		return err
	}
	if err := drv.Sleep(); err != nil {
		appLog.Error("display sleep failed", err)
	}
	appLog.Info("panel updated")
	return nil
}

// packPreview loads the captured PNG and packs it into the panel's
// black/red planes.
func packPreview(path string) (black, red []byte, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("decode preview: %w", err)
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		b := img.Bounds()
		nrgba = image.NewNRGBA(b)
		draw.Draw(nrgba, b, img, b.Min, draw.Src)
	}
	return convert.PackNRGBA(nrgba)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/agendacal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one capture(+display) cycle and exit")
	flag.BoolVar(&cfg.renderOnly, "render-only", false, "Render and capture only; do not touch display hardware")
	flag.BoolVar(&cfg.dump, "dump", false, "Dump packed planes (black.bin, red.bin) next to the preview")
	flag.BoolVar(&cfg.debug, "debug", false, "Use ./cache for state instead of /var/lib/agendacal")

	flag.Parse()
	return cfg
}
