package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"nless/internal/config"
	"nless/internal/ui"
	"nless/internal/util/logx"
	"nless/internal/version"
)

func main() {
	logx.SetLevelFromEnv()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	if cfg.ShowVersion {
		fmt.Println("nless", version.String())
		return
	}

	// Setup cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logx.Infof("starting nless %s: %s", version.String(), cfg.String())
	if err := ui.Run(ctx, cfg); err != nil {
		logx.Errorf("nless exited with error: %v", err)
		os.Exit(1)
	}
}
