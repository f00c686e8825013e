// Command objconv converts Wavefront OBJ models into indexed mesh files.
package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/objconv/internal/config"
	"github.com/Faultbox/objconv/internal/convert"
	"github.com/Faultbox/objconv/internal/logger"
)

const usage = "Usage: objconv [flags] <input.obj> <output>"

func main() {
	os.Exit(run())
}

func run() int {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()
	logger.Sugar.Debugf("Config: %+v", cfg)

	args := config.Args()
	if config.SaveRequested() {
		path, err := cfg.Save()
		if err != nil {
			logger.Error("saving config failed", zap.Error(err))
			return 1
		}
		logger.Info("config saved", zap.String("path", path))
		if len(args) == 0 {
			return 0
		}
	}
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}

	start := time.Now()
	written, err := convert.New(cfg).Run(args[0], args[1])
	if err != nil {
		logger.Error("conversion failed", zap.String("input", args[0]), zap.Error(err))
		return 1
	}
	for _, path := range written {
		logger.Info("written", zap.String("path", path))
	}
	logger.Info("done", zap.Duration("elapsed", time.Since(start)))
	return 0
}
