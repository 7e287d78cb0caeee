// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main runs the in-memory chat backend used for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/danniesim/mecoai-chat/internal/devserver"
	"github.com/danniesim/mecoai-chat/internal/logging"
)

func main() {
	addr := flag.String("addr", devserver.DefaultAddr, "listen address")
	cosmos := flag.Bool("cosmos", true, "enable the history routes")
	fail := flag.Bool("fail", false, "reject every history mutation with 500")
	delay := flag.Duration("delay", 40*time.Millisecond, "pause between stream writes")
	chunk := flag.Int("chunk", devserver.DefaultChunkSize, "stream write size in bytes")
	level := flag.String("log-level", "info", "debug|info|warn|error")
	flag.Parse()

	lvl, err := logging.ParseLevel(*level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logging.NewWriter(os.Stderr, lvl)
	defer func() { _ = log.Sync() }()

	srv := devserver.New(devserver.Options{
		Cosmos:        *cosmos,
		FailMutations: *fail,
		ChunkSize:     *chunk,
		ChunkDelay:    *delay,
		Logger:        log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Start(*addr) }()

	select {
	case err := <-errc:
		if err != nil {
			log.Error("server failed", zap.Error(err))
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}
}
