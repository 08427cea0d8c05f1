package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"AdapterScout/internal/api"
	"AdapterScout/internal/collector"
	"AdapterScout/internal/config"
	"AdapterScout/internal/dashboard"
	"AdapterScout/internal/metrics"
	"AdapterScout/internal/notifier"
	"AdapterScout/internal/recorder"
	"AdapterScout/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the refresh scheduler and Telegram polling",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath)
		},
	}
}

func runServe(configPath string) error {
	log.Println("[INFO] adapterscout starting...")

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	col := newCollector(cfg)
	col.Observer = m

	svc := dashboard.NewService(col, cfg.Rules())
	svc.OnRefresh(m.Hook)

	rec := openRecorder(cfg.Database.SQLitePath)
	defer rec.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		sender scheduler.Sender
		tn     *notifier.TelegramNotifier
	)
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	} else {
		log.Println("[WARN] telegram not configured, reports are logged only")
	}

	sched := scheduler.NewScheduler(ctx, svc, sender, rec, scheduler.ReportOptions{
		NewListingDays: cfg.Report.NewListingDays,
		MinTVL:         cfg.Report.MinTVL,
	})
	sched.OnCycle = m.ObserveCycle
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.ReportCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	srv := api.NewServer(cfg.Server.Addr, svc, sched, rec, reg)
	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.Start() }()

	go sched.RunRefreshNow()

	log.Println("[INFO] adapterscout is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
	case err := <-srvErr:
		if err != nil {
			log.Printf("[ERROR] %v", err)
		}
	}
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Printf("[ERROR] %v", err)
	}
	log.Println("[INFO] adapterscout stopped")
	return nil
}

func newCollector(cfg *config.Config) *collector.Collector {
	llama := collector.NewLlamaFetcher(cfg.Sources.ProtocolsURL, cfg.Sources.PoolsURL, cfg.Proxy)
	gh := cfg.Sources.GitHub
	tree := collector.NewGitHubTreeFetcher(gh.Owner, gh.Repo, gh.Ref, gh.Token, cfg.Proxy)
	log.Printf("[INFO] data sources: %s, %s", llama.Name(), tree.Name())
	return collector.NewCollector(llama, llama, tree)
}

func openRecorder(path string) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(path)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}
