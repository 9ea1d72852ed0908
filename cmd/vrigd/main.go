// vrigd: avatar retargeting daemon
// Accepts solver estimates over WebSocket, drives one avatar skeleton per
// connection and streams the resulting poses to viewers.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-vrig/internal/config"
	"github.com/teslashibe/go-vrig/internal/log"
	"github.com/teslashibe/go-vrig/pkg/session"
	"github.com/teslashibe/go-vrig/pkg/web"
)

var version = "0.1.0"

func main() {
	port := flag.String("port", "", "HTTP server port (overrides VRIG_PORT)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *debug {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}

	log.Init(cfg.LogLevel)

	rigCfg, err := cfg.RetargetConfig()
	if err != nil {
		log.Error("invalid retarget config", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("🦴 vrigd v" + version)
	fmt.Printf("   Solver:  ws://localhost:%s/ws/solver\n", cfg.Port)
	fmt.Printf("   Viewer:  ws://localhost:%s/ws/viewer\n", cfg.Port)
	fmt.Printf("   Preset:  %s  Hands: %s\n", cfg.Preset, cfg.HandAssignment())
	fmt.Println()

	sessions := session.NewHub(rigCfg, log.L())
	sessions.SetHandAssignment(cfg.HandAssignment())
	server := web.NewServer(cfg.Port, sessions, log.L(), cfg.Debug)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}

	if err := server.Shutdown(); err != nil {
		log.Error("shutdown", "error", err)
	}
	fmt.Println("👋 Goodbye!")
}
