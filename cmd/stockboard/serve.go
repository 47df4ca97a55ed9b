package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"StockBoard/internal/notifier"
	"StockBoard/internal/scheduler"
	"StockBoard/internal/web"
)

type serveCmd struct {
	refreshOnStart bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the web dashboard" }
func (*serveCmd) Usage() string {
	return `stockboard serve [-refresh-on-start]

  Serves the dashboard over HTTP, runs the scheduled refresh and digest
  tasks, and answers Telegram commands when a bot token is configured.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.refreshOnStart, "refresh-on-start", os.Getenv("RUN_ON_START") == "true", "Warm the cache for the default selection at startup.")
}

func (c *serveCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log.Println("[INFO] StockBoard starting...")
	a, err := newApp()
	if err != nil {
		log.Printf("[FATAL] %v", err)
		return subcommands.ExitFailure
	}
	cfg := a.cfg

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var n notifier.Notifier = notifier.NewNoopNotifier()
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		log.Println("[INFO] telegram not configured, digests disabled")
	}

	sched := scheduler.NewScheduler(ctx, a.collector, n, a.cache, cfg.DefaultSelection(), cfg.Dashboard.Currency)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.DigestCron, cfg.Schedule.PurgeCron); err != nil {
		log.Printf("[FATAL] register cron tasks: %v", err)
		return subcommands.ExitFailure
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if c.refreshOnStart {
		log.Println("[INFO] refresh-on-start enabled, warming cache now")
		go sched.RefreshNow()
	}

	srv := web.NewServer(cfg, a.collector)
	if err := srv.Run(ctx); err != nil {
		log.Printf("[ERROR] %v", err)
		return subcommands.ExitFailure
	}
	log.Println("[INFO] StockBoard stopped")
	return subcommands.ExitSuccess
}
