package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/mlindqvist/snaptree/internal/cli"
	"github.com/mlindqvist/snaptree/internal/config"
	"github.com/mlindqvist/snaptree/internal/db"
	"github.com/mlindqvist/snaptree/internal/domain"
	"github.com/mlindqvist/snaptree/internal/repository"
	"github.com/mlindqvist/snaptree/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	nodeRepo := repository.NewSQLiteNodeRepo(database)
	snapRepo := repository.NewSQLiteSnapshotRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)
	ids := domain.UUIDGenerator{}

	resolver := service.NewResolverService(nodeRepo, snapRepo, cfg.MaxResolveDepth)
	app := &cli.App{
		Tree:      service.NewTreeService(nodeRepo, snapRepo, uow, ids),
		Snapshots: service.NewSnapshotService(nodeRepo, snapRepo, uow, ids),
		Composite: service.NewCompositeService(nodeRepo, snapRepo, uow, ids, cfg.MaxResolveDepth, cfg.StrictComposites),
		Resolver:  resolver,
		Checker:   service.NewConsistencyService(resolver, cfg.CheckFailFast),
		Config:    cfg,
	}

	// Detect interactive terminal for display decisions.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
