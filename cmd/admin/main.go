package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/aviz85/socisphere/internal/cron"
	"github.com/aviz85/socisphere/internal/notifications"
	"github.com/aviz85/socisphere/pkg/config"
	"github.com/aviz85/socisphere/pkg/db"
	"github.com/aviz85/socisphere/pkg/logger"
	"github.com/aviz85/socisphere/pkg/mailer"
)

const usage = `usage: admin <command> [flags]

commands:
  cleanup   delete notifications past the retention window
  remind    email users about stale unread notifications
  stats     print aggregate notification counts
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	logg := logger.New(logger.Options{ServiceName: "admin"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "admin",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	repo := notifications.NewRepository(dbClient.DB())
	svc, err := notifications.NewService(repo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	ctx := logg.WithField(context.Background(), "command", os.Args[1])

	switch os.Args[1] {
	case "cleanup":
		runCleanup(ctx, logg, cfg, svc, os.Args[2:])
	case "remind":
		runRemind(ctx, logg, cfg, repo, os.Args[2:])
	case "stats":
		runStats(ctx, logg, svc)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runCleanup(ctx context.Context, logg *logger.Logger, cfg *config.Config, svc notifications.Service, args []string) {
	fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
	days := fs.Int("days", cfg.Notifications.RetentionDays, "delete notifications older than this many days")
	dryRun := fs.Bool("dry-run", false, "count matching rows without deleting")
	fs.Parse(args)

	if *days <= 0 {
		fmt.Fprintln(os.Stderr, "-days must be positive")
		os.Exit(1)
	}

	age := time.Duration(*days) * 24 * time.Hour
	affected, err := svc.PurgeOlderThan(ctx, age, *dryRun)
	if err != nil {
		logg.Error(ctx, "cleanup failed", err)
		os.Exit(1)
	}

	verb := "deleted"
	if *dryRun {
		verb = "would delete"
	}
	fmt.Printf("%s %d notifications older than %d days\n", verb, affected, *days)
}

func runRemind(ctx context.Context, logg *logger.Logger, cfg *config.Config, repo notifications.Repository, args []string) {
	fs := flag.NewFlagSet("remind", flag.ExitOnError)
	days := fs.Int("days", cfg.Notifications.ReminderAfterDays, "remind about notifications unread for this many days")
	dryRun := fs.Bool("dry-run", false, "log the reminders without sending mail")
	fs.Parse(args)

	if *days <= 0 {
		fmt.Fprintln(os.Stderr, "-days must be positive")
		os.Exit(1)
	}

	var mail mailer.Mailer
	if !*dryRun && cfg.SMTP.Host != "" {
		smtp, err := mailer.NewSMTP(cfg.SMTP)
		if err != nil {
			logg.Error(ctx, "failed to create smtp mailer", err)
			os.Exit(1)
		}
		mail = smtp
	} else {
		mail = mailer.NewLog(logg)
	}

	job, err := cron.NewReadReminderJob(cron.ReadReminderJobParams{
		Logger:    logg,
		Source:    repo,
		Mailer:    mail,
		AfterDays: *days,
		DryRun:    *dryRun,
	})
	if err != nil {
		logg.Error(ctx, "failed to create reminder job", err)
		os.Exit(1)
	}

	if err := job.Run(ctx); err != nil {
		logg.Error(ctx, "reminder sweep failed", err)
		os.Exit(1)
	}
	fmt.Println("reminder sweep complete")
}

func runStats(ctx context.Context, logg *logger.Logger, svc notifications.Service) {
	stats, err := svc.Stats(ctx)
	if err != nil {
		logg.Error(ctx, "stats failed", err)
		os.Exit(1)
	}

	encoded, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		logg.Error(ctx, "encode stats", err)
		os.Exit(1)
	}
	fmt.Println(string(encoded))
}
