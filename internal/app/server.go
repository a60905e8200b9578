package app

import (
	"context"
	"fmt"
	"time"

	"gitpen-go/internal/config"
	"gitpen-go/internal/database"
	"gitpen-go/internal/gitpen"
	"gitpen-go/internal/remote"
	"gitpen-go/internal/server"
)

// NewServer wires the web service from config: document store, remote
// object store, token issuer, logger. The returned cleanup closes the
// database and log file; the caller must invoke it on shutdown.
func NewServer(ctx context.Context, cfg *config.Config) (*server.Server, func() error, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Server.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("creating database: %w", err)
	}

	rem, err := remote.NewRemoteFromConfig(ctx, cfg.Remote)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("creating remote store: %w", err)
	}

	tokens, err := server.NewTokenIssuer(cfg.Server.JWTSecret)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}

	adapter := &slogAdapter{l: logger}
	svc := gitpen.NewService(nil, rem, nil, nil, adapter, gitpen.RealClock{}, gitpen.UUIDGenerator{})
	srv := server.New(db, svc, tokens, adapter, gitpen.RealClock{})

	cleanup := func() error {
		err := db.Close()
		if logFile != nil {
			logFile.Close()
		}
		return err
	}
	return srv, cleanup, nil
}
