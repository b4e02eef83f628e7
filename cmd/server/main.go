package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiryu-dev/crossword/internal/adapters/puzzlefile"
	"github.com/kiryu-dev/crossword/internal/config"
	"github.com/kiryu-dev/crossword/internal/transport/tcp"
	"github.com/kiryu-dev/crossword/internal/transport/ws"
	"github.com/kiryu-dev/crossword/internal/usecase/command"
	"github.com/kiryu-dev/crossword/internal/usecase/hub"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfgPath := flag.String("config", "./config.yml", "path to config")
	flag.Parse()
	cfg, err := config.New(*cfgPath)
	if err != nil {
		panic(err)
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.Log.Level)
	logger, err := zapCfg.Build()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	puzzles, err := puzzlefile.LoadDir(cfg.PuzzlesDir, logger)
	if err != nil {
		logger.Fatal(err.Error())
	}
	if len(puzzles) == 0 {
		logger.Warn("no playable puzzles found", zap.String("dir", cfg.PuzzlesDir))
	}

	var (
		game      = hub.New(puzzles, cfg.Protocol, logger)
		commands  = command.New(game, cfg.Protocol, logger)
		tcpServer = tcp.New(cfg.Server.TcpAddr, commands, logger)
		wsServer  = ws.New(cfg.Server.WsAddr, game, commands, logger)
	)
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	errGroup, ctx := errgroup.WithContext(context.Background())
	errGroup.Go(func() error {
		select {
		case s := <-sigChan:
			return errors.Errorf("captured signal: %v", s)
		case <-ctx.Done():
			return nil
		}
	})
	errGroup.Go(func() error {
		return tcpServer.ListenAndServe(ctx)
	})
	errGroup.Go(func() error {
		return wsServer.ListenAndServe()
	})
	errGroup.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := wsServer.Shutdown(shutdownCtx); err != nil {
			logger.Info("failed to shutdown http server: " + err.Error())
		}
		if err := tcpServer.Shutdown(); err != nil {
			logger.Info("failed to shutdown tcp server: " + err.Error())
		}
		return nil
	})
	if err := errGroup.Wait(); err != nil {
		logger.Info("gracefully shut down the server: " + err.Error())
	}
}
