// Package main is the entry point for the Kafka broker.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/moband/kafka-broker/internal/metadata"
	"github.com/moband/kafka-broker/internal/server"
	"github.com/moband/kafka-broker/pkg/logger"
)

// metadataLogPath is the on-disk location of the KRaft __cluster_metadata
// log this broker serves, per spec.md §3/§6.
const metadataLogPath = "/tmp/kraft-combined-logs/__cluster_metadata-0/00000000000000000000.log"

func main() {
	log := logger.New(logger.INFO)
	log.Info("Kafka broker starting...")

	catalog, err := metadata.Load(metadataLogPath, log)
	if err != nil {
		log.Error("loading metadata log: %s", err.Error())
		os.Exit(1)
	}

	config := server.Config{
		Host: "0.0.0.0",
		Port: 9092,
	}

	srv := server.New(config, catalog, log)
	if err := srv.Start(); err != nil {
		log.Error("failed to start server: %s", err.Error())
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	log.Info("shutting down server...")

	if err := srv.Stop(); err != nil {
		log.Error("error during shutdown: %s", err.Error())
		os.Exit(1)
	}
}
