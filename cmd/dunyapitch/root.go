package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mager/makampitch/config"
	"github.com/mager/makampitch/database"
	"github.com/mager/makampitch/docserver"
	"github.com/mager/makampitch/extractor"
	"github.com/mager/makampitch/firestore"
	"github.com/mager/makampitch/logger"
	"github.com/mager/makampitch/pipeline"
	"github.com/mager/makampitch/pitch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "dunyapitch",
	Short: "Makam pitch post-processing",
	Long: `Corrects octave errors in makam pitch tracks, builds note models and
pitch distributions, and packs pitch for display.`,
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}

// app holds the services the commands share.
type app struct {
	cfg      config.Config
	log      *zap.SugaredLogger
	store    *docserver.Store
	pipeline *pipeline.Pipeline
}

func newApp() (*app, error) {
	cfg := config.ProvideConfig()
	log, err := logger.ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}

	store := docserver.ProvideStore(cfg, log)
	algorithms := extractor.ProvideCommand(cfg, log)

	db, err := database.ProvideDatabase(log, cfg)
	if err != nil {
		return nil, err
	}
	fs, err := firestore.ProvideDB(cfg, log)
	if err != nil {
		return nil, err
	}

	p := pipeline.ProvidePipeline(
		store,
		pitch.ProvideCorrectedPitch(cfg, store, algorithms, log),
		pitch.ProvideDunyaPitch(store, algorithms, log),
		database.ProvideRunLog(log, db),
		firestore.ProvidePublisher(fs, log),
		log,
	)
	return &app{cfg: cfg, log: log, store: store, pipeline: p}, nil
}
