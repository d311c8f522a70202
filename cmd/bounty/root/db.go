package root

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"

	"github.com/zhang-san-er/task-tools/internal/config"
	"github.com/zhang-san-er/task-tools/internal/engine"
	"github.com/zhang-san-er/task-tools/internal/storage"
)

func loadConfig() (*config.Config, error) {
	return config.Load(flags.config)
}

// dbPath resolves --db, then $BOUNTY_DB, then db_path from the config file,
// then the default. config.Load binds BOUNTY_DB onto db_path.
func dbPath(cfg *config.Config) (string, error) {
	explicit := flags.db
	if explicit == "" {
		explicit = cfg.DBPath
	}
	return storage.ResolveDBPath(explicit)
}

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, func(), error) {
	path, err := dbPath(cfg)
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return db, cleanup, nil
}

func serviceOptions(cfg *config.Config) engine.Options {
	opts := engine.DefaultOptions()
	opts.StrictBalance = !cfg.Economy.AllowOverdraft
	opts.StartingPoints = cfg.Economy.StartingPoints
	opts.DefaultDailyLimit = cfg.Tasks.DefaultDailyLimit
	opts.DefaultRepeatable = cfg.Tasks.DefaultRepeatable

	out := io.Discard
	if flags.verbose || cfg.Log.Verbose {
		out = os.Stderr
	}
	opts.Logger = log.New(out, "bounty: ", log.LstdFlags)
	return opts
}

func openService(ctx context.Context) (*engine.Service, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, cleanup, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	svc, err := engine.NewService(ctx, db, serviceOptions(cfg))
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}
