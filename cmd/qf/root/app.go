package root

import (
	"context"
	"errors"
	"log/slog"

	"github.com/callisatech-creator/QuestFocus/internal/config"
	"github.com/callisatech-creator/QuestFocus/internal/engine"
	"github.com/callisatech-creator/QuestFocus/internal/feedback"
	"github.com/callisatech-creator/QuestFocus/internal/storage"
)

type app struct {
	cfg *config.Config
	svc *engine.Service
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Options{ConfigPath: flagConfig})
	if err != nil {
		return nil, err
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
		if err := cfg.Resolve(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// openApp wires config, logging, storage and the feedback client into a
// service. quiet drops stderr logging for commands that own the terminal.
func openApp(ctx context.Context, quiet bool) (*app, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, closeLog, err := config.NewLogger(cfg, quiet)
	if err != nil {
		return nil, nil, err
	}

	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		_ = closeLog()
		return nil, nil, err
	}
	logger.Debug("database opened", slog.String("path", cfg.DBPath))

	fb := feedback.New(feedback.Config{
		APIKey:  cfg.Feedback.APIKey,
		BaseURL: cfg.Feedback.BaseURL,
		Model:   cfg.Feedback.Model,
		Timeout: cfg.Feedback.Timeout,
		Logger:  logger,
	})

	svc := engine.NewService(db,
		engine.WithClock(engine.SystemClock{Location: cfg.Location}),
		engine.WithLogger(logger),
		engine.WithFeedback(fb),
	)

	cleanup := func() {
		_ = db.Close()
		_ = closeLog()
	}
	return &app{cfg: cfg, svc: svc}, cleanup, nil
}

func openService(ctx context.Context) (*engine.Service, func(), error) {
	a, cleanup, err := openApp(ctx, false)
	if err != nil {
		return nil, nil, err
	}
	return a.svc, cleanup, nil
}

// friendly maps engine sentinels to short CLI hints.
func friendly(err error) error {
	switch {
	case errors.Is(err, engine.ErrNoActiveSession):
		return errors.New("no session running (start one with: qf start <subject>)")
	case errors.Is(err, engine.ErrActiveSession):
		return errors.New("a session is already running (see: qf status)")
	default:
		return err
	}
}
