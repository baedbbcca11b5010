package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"alertrelay/internal/config"
	"alertrelay/internal/logging"
	"alertrelay/internal/metrics"
	"alertrelay/internal/notify"
	"alertrelay/internal/realert"
	"alertrelay/internal/server"
	"alertrelay/internal/store"
)

var configPath = flag.String("config", "config/config.yaml", "Path to config.yaml.")

func main() {
	flag.Parse()

	cfg, err := config.Parse(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logging.Init(cfg.LogLevel)
	logging.Infof("Starting Alert Relay")
	logging.Infof("Config file '%s' loaded successfully", *configPath)
	logging.Debugf("Parsed config: %+v", cfg)

	if err := store.MigrateV1(cfg.FingerprintsFile); err != nil {
		logging.Debugf("No legacy fingerprints file to migrate: %v", err)
	}
	st := store.Load(cfg.FingerprintsFile)

	queue := notify.NewQueue()
	var submitter notify.Submitter = notify.NewPushoverSubmitter(cfg.PushoverToken)
	if cfg.TestMode {
		logging.Warnf("Test mode enabled, notifications will be logged instead of sent")
		submitter = notify.DryRunSubmitter{}
	}
	worker := notify.NewWorker(queue, submitter,
		time.Duration(cfg.SendDelaySecs)*time.Second,
		time.Duration(cfg.LinearRetrySecs)*time.Second)
	go worker.Run()

	if cfg.MetricsAddr != "" {
		go metrics.Serve(cfg.MetricsAddr)
	}

	scheduler := realert.NewScheduler(st, queue, cfg.PushoverUserKeys, cfg.AppName)
	go scheduler.RunInterval(cfg.AlertEveryMins)
	go scheduler.RunCron(cfg.RealertCron)

	listener, err := net.Listen("tcp", cfg.BindHost)
	if err != nil {
		logging.Fatalf("Failed to bind %s: %v", cfg.BindHost, err)
	}
	logging.Infof("Listening on %s", cfg.BindHost)

	server.New(cfg, st, queue).Run(listener)
}
