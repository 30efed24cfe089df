package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rpggio/tracespace/internal/config"
	"github.com/rpggio/tracespace/internal/domain/refresh"
	"github.com/rpggio/tracespace/internal/loader"
	"github.com/rpggio/tracespace/internal/mcp"
	"github.com/rpggio/tracespace/internal/render"
	"github.com/rpggio/tracespace/internal/sqlite"
	"github.com/rpggio/tracespace/internal/transport"
	"github.com/rpggio/tracespace/internal/tui"
	"github.com/rpggio/tracespace/internal/viewer"
	"golang.org/x/sync/errgroup"
)

func runViewer(parent context.Context, cfg config.Config) error {
	logger, closeLog, err := newLogger(cfg.Log.Path, cfg.Log.Level, cfg.Log.MaxBytes)
	if err != nil {
		return fmt.Errorf("log file: %w", err)
	}
	defer closeLog()

	journal, closeDB, err := openJournal(cfg.DB.Path, logger)
	if err != nil {
		logger.Error("failed to open refresh journal", "error", err)
		return err
	}
	defer closeDB()

	ld, err := loader.New(loader.Options{
		Endpoint: cfg.Snapshot.Endpoint,
		Timeout:  cfg.Snapshot.FetchTimeout,
	}, logger)
	if err != nil {
		return err
	}
	defer ld.Close()

	term := render.NewTerminal()
	v := viewer.New(term, viewer.Options{
		CameraDistance: cfg.Visual.CameraDistance,
		FOV:            cfg.Visual.FOV,
	}, logger)
	defer func() {
		if err := v.Teardown(); err != nil {
			logger.Error("teardown", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var (
		store   viewer.Store
		program *tea.Program
	)
	poller := loader.NewPoller(ld, cfg.Snapshot.RefreshInterval, func(res loader.Result) {
		program.Send(tui.ResultMsg(res))
	}, logger)

	model := tui.New(v, term, tui.Options{
		FrameInterval: cfg.FrameInterval(),
		RotationSpeed: cfg.Visual.CameraRotationSpeed,
		Journal:       journal,
		Refresher:     poller,
		Publisher:     &store,
		Logger:        logger,
	})
	warmStart(ctx, model, journal, ld, logger)

	program = tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return poller.Run(gctx) })

	if path := ld.Path(); path != "" {
		watcher := loader.NewWatcher(path, cfg.Snapshot.WatchDebounce, poller.Trigger, logger)
		g.Go(func() error { return watcher.Run(gctx) })
	}

	if cfg.Inspect.Enabled {
		handler := inspectHandler(cfg, &store, journal, logger)
		addr := net.JoinHostPort(cfg.Inspect.Host, strconv.Itoa(cfg.Inspect.Port))
		g.Go(func() error { return transport.Serve(gctx, addr, handler, logger) })
	}

	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})

	logger.Info("viewer started", "endpoint", ld.Endpoint(), "version", version)
	err = g.Wait()
	logger.Info("viewer stopped", "error", err)
	return err
}

func openJournal(path string, logger *slog.Logger) (*refresh.Service, func() error, error) {
	if err := ensureParentDir(path); err != nil {
		return nil, nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	return refresh.NewService(sqlite.NewRefreshRepository(db), logger), db.Close, nil
}

// warmStart shows the last good document for this endpoint until the first
// live fetch supersedes it.
func warmStart(ctx context.Context, model *tui.Model, journal *refresh.Service, ld *loader.Loader, logger *slog.Logger) {
	cached, err := journal.LastGood(ctx, ld.Endpoint())
	if err != nil {
		if !errors.Is(err, refresh.ErrNoCachedSnapshot) {
			logger.Warn("reading cached snapshot", "error", err)
		}
		return
	}
	res := ld.FromCache(cached.Body)
	if !res.OK() {
		logger.Warn("cached snapshot is unusable", "error", res.Err)
		return
	}
	model.Update(tui.ResultMsg(res))
	logger.Info("warm start from cached snapshot", "fetched_at", cached.FetchedAt)
}

func inspectHandler(cfg config.Config, store *viewer.Store, journal *refresh.Service, logger *slog.Logger) http.Handler {
	var auth func(http.Handler) http.Handler
	if cfg.Inspect.Token != "" {
		auth = transport.AuthMiddleware(transport.StaticToken(cfg.Inspect.Token))
	}
	return transport.NewServer(transport.Options{
		State: store,
		MCP: mcp.NewServer(mcp.Config{
			State:    store,
			Journal:  journal,
			Endpoint: cfg.Snapshot.Endpoint,
			Version:  version,
			Logger:   logger,
		}),
		Auth:   auth,
		Logger: logger,
	})
}
