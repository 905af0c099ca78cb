// Prody Daemon - the background service behind the Prody apps
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/prody/prody/internal/ai"
	"github.com/prody/prody/internal/api"
	"github.com/prody/prody/internal/config"
	"github.com/prody/prody/internal/core"
	"github.com/prody/prody/internal/journal"
	"github.com/prody/prody/internal/letters"
	"github.com/prody/prody/internal/llm"
	"github.com/prody/prody/internal/logging"
	"github.com/prody/prody/internal/notifications"
	"github.com/prody/prody/internal/rewards"
	"github.com/prody/prody/internal/scheduler"
	"github.com/prody/prody/internal/storage"
	"github.com/prody/prody/internal/vocab"
)

var (
	configPath string
	dataDir    string
	port       int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "prody",
		Short: "Prody Daemon - your personal growth companion",
		RunE:  runDaemon,
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file path (default <data-dir>/config.json)")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "", "Data directory (default ~/.prody)")
	rootCmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default 8484)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))
	log := logging.Named("daemon")
	log.Info("starting Prody")

	db, err := storage.Open(storage.Config{Path: cfg.DatabasePath()})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	client := llm.NewClient(llm.DefaultConfig())
	aiService := ai.NewService(client, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if !aiService.Ready() {
		log.Warn("GEMINI_API_KEY not set, AI features unavailable until configured")
	}

	rewardService := rewards.NewService(storage.NewRewardStore(db))
	notifyService := notifications.NewService(db)
	letterManager := letters.NewManager(storage.NewLetterStore(db), aiService, rewardService, notifyService)
	journalService := journal.NewService(storage.NewJournalStore(db), aiService, rewardService)
	vocabService := vocab.NewService(storage.NewVocabStore(db), aiService, rewardService)

	sched := scheduler.New(cfg.Scheduler.Timezone)
	if err := registerTasks(sched, cfg, letterManager, aiService, notifyService); err != nil {
		return fmt.Errorf("failed to register tasks: %w", err)
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	server := api.New(api.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		DB:             db,
		AIService:      aiService,
		LetterManager:  letterManager,
		JournalService: journalService,
		VocabService:   vocabService,
		RewardService:  rewardService,
		NotifyService:  notifyService,
		OnConfigChange: func(apiKey, model string) {
			if model != "" {
				cfg.Gemini.Model = model
			}
			// The key stays out of the file.
			if err := cfg.Save(configPath); err != nil {
				log.Warn("failed to save config: %v", err)
			}
		},
	})

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		log.Info("shutting down")
		sched.Stop()
		letterManager.WaitForReflections()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Stop(ctx)
	}()

	log.Info("open http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	return server.Start()
}

// registerTasks wires the background work: the letter delivery sweep, the
// daily wisdom drop, and the optional journal reminder.
func registerTasks(sched *scheduler.Scheduler, cfg *config.Config, letterManager *letters.Manager, aiService *ai.Service, notifyService *notifications.Service) error {
	sweep, err := time.ParseDuration(cfg.Scheduler.DeliverySweep)
	if err != nil || sweep <= 0 {
		sweep = time.Minute
	}

	err = sched.Register(&scheduler.Task{
		ID:       "letter-delivery-sweep",
		Name:     "Deliver due letters",
		Schedule: scheduler.Every(sweep),
		Timeout:  time.Minute,
		Handler: func(ctx context.Context) error {
			_, err := letterManager.ProcessDeliveries(ctx)
			return err
		},
	})
	if err != nil {
		return err
	}

	err = sched.Register(&scheduler.Task{
		ID:       "daily-wisdom",
		Name:     "Daily wisdom drop",
		Schedule: scheduler.DailyAt(cfg.Scheduler.DailyWisdomAt),
		Timeout:  2 * time.Minute,
		Handler: func(ctx context.Context) error {
			wisdom, err := aiService.GenerateDailyWisdom(ctx, nil, core.DefaultPersona)
			if err != nil {
				return err
			}
			_, err = notifyService.Create(ctx, notifications.CreateRequest{
				Type:  notifications.NotifyDailyWisdom,
				Title: "Today's wisdom",
				Body:  wisdom.Message,
			})
			return err
		},
	})
	if err != nil {
		return err
	}

	if at := cfg.Scheduler.JournalReminder; at != "" {
		err = sched.Register(&scheduler.Task{
			ID:       "journal-reminder",
			Name:     "Evening journal reminder",
			Schedule: scheduler.DailyAt(at),
			Timeout:  time.Minute,
			Handler: func(ctx context.Context) error {
				_, err := notifyService.Create(ctx, notifications.CreateRequest{
					Type:  notifications.NotifyReminder,
					Title: "Time to journal",
					Body:  "A few lines about today is enough.",
				})
				return err
			},
		})
		if err != nil {
			return err
		}
	}

	return nil
}
