package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/ayusman/beyondbrush/internal/app"
	"github.com/ayusman/beyondbrush/internal/config"
	"github.com/ayusman/beyondbrush/internal/server"
	"github.com/ayusman/beyondbrush/internal/store"
	"github.com/ayusman/beyondbrush/internal/tray"
	"pkt.systems/pslog"
)

type runOptions struct {
	cfgPath  string
	window   bool
	tray     bool
	addr     string
	noServer bool
	detector string
}

func newRunCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the painter",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.cfgPath)
			if err != nil {
				return err
			}
			if err := opts.apply(&cfg); err != nil {
				return err
			}
			return runPainter(cmd.Context(), cfg, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.cfgPath, "config", "c", "", "config path (default ~/.beyondbrush/config.yaml)")
	cmd.Flags().BoolVar(&opts.window, "window", false, "show a local preview window with keyboard input")
	cmd.Flags().BoolVar(&opts.tray, "tray", false, "show a system tray menu")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "HTTP listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&opts.noServer, "no-server", false, "disable the HTTP display and API")
	cmd.Flags().StringVar(&opts.detector, "detector", "", "detector backend: mediapipe or mock")
	return cmd
}

// apply folds the command line flags into cfg.
func (o runOptions) apply(cfg *config.Config) error {
	if o.window && o.tray {
		return errors.New("--window and --tray both need the main thread; pick one")
	}
	if o.addr != "" {
		cfg.Server.Addr = o.addr
		cfg.Server.Enabled = true
	}
	if o.noServer {
		cfg.Server.Enabled = false
	}
	if o.detector != "" {
		cfg.Detector.Backend = o.detector
	}
	if !cfg.Server.Enabled && !o.window && !o.tray {
		return errors.New("nothing would display the painting: enable the server, --window or --tray")
	}
	return config.Validate(*cfg)
}

func runPainter(ctx context.Context, cfg config.Config, opts runOptions) error {
	logger := pslog.Ctx(ctx)

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	painter, err := app.New(ctx, app.Options{Config: cfg, Store: st})
	if err != nil {
		return err
	}
	defer painter.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErr := make(chan error, 1)
	if cfg.Server.Enabled {
		hub := server.NewFrameHub(cfg.Server.JPEGQuality)
		painter.AddSink(hub)
		srv := server.New(server.Config{
			StaticDir:  cfg.Server.StaticDir,
			Store:      st,
			Controller: painter,
			Frames:     hub,
		})
		go func() { serverErr <- srv.Run(ctx, cfg.Server.Addr) }()

		if cfg.Server.Advertise {
			if err := server.Advertise(ctx, cfg.Server.ServiceName, cfg.Server.Addr); err != nil {
				logger.Warn("mdns advertisement disabled", "err", err)
			}
		}
	}

	var window *app.Window
	if opts.window {
		window = app.NewWindow("Beyond The Brush")
		defer window.Close()
		painter.AddSink(window)
		painter.SetKeySource(window)
	}
	var menu *tray.Tray
	if opts.tray {
		menu = newTray(ctx, painter)
		painter.AddSink(menu)
	}

	if err := painter.Start(ctx); err != nil {
		return err
	}
	logger.Info("painter running", "server", cfg.Server.Enabled, "addr", cfg.Server.Addr, "window", opts.window, "tray", opts.tray)

	go func() {
		select {
		case <-painter.Quit():
			logger.Info("quit requested")
			cancel()
		case <-ctx.Done():
		}
		if menu != nil {
			menu.Quit()
		}
	}()

	switch {
	case window != nil:
		window.Run(ctx, painter.RequestQuit)
	case menu != nil:
		menu.Run()
	default:
		select {
		case <-ctx.Done():
		case err := <-serverErr:
			cancel()
			painter.Stop()
			return err
		}
	}

	cancel()
	painter.Stop()
	if cfg.Server.Enabled {
		if err := <-serverErr; err != nil {
			return err
		}
	}
	return nil
}

// newTray wires the tray menu to the painter.
func newTray(ctx context.Context, painter *app.App) *tray.Tray {
	logger := pslog.Ctx(ctx)
	t := tray.New()
	t.SetEnabled(painter.IsEnabled())
	t.OnToggle(painter.SetEnabled)
	t.OnSave(func() (string, error) {
		p, err := painter.Save(ctx)
		if err != nil {
			logger.Warn("save from tray failed", "err", err)
			return "", err
		}
		return p.Path, nil
	})
	t.OnQuit(painter.RequestQuit)
	return t
}
