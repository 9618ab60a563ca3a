package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/webinterop/internal/infrastructure/config"
	"github.com/GriffinCanCode/webinterop/internal/infrastructure/server"
)

func main() {
	configPath := flag.String("config", "", "YAML or TOML configuration file")
	port := flag.String("port", "", "Server port (overrides configuration)")
	codec := flag.String("codec", "", "Default wire codec: json or cbor")
	dev := flag.Bool("dev", false, "Development logging")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg = loaded
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *codec != "" {
		cfg.Interop.Codec = *codec
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		_ = srv.Close()
		log.Fatalf("Server error: %v", err)
	}
	if err := srv.Close(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
