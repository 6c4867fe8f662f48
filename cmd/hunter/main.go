package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go-career-hunter/internal/ai"
	"go-career-hunter/internal/browser"
	"go-career-hunter/internal/config"
	"go-career-hunter/internal/database"
	"go-career-hunter/internal/dedup"
	"go-career-hunter/internal/filter"
	"go-career-hunter/internal/orchestrator"
	"go-career-hunter/internal/reporter"
	"go-career-hunter/internal/scraper"
	"go-career-hunter/internal/telegram"
	"go-career-hunter/utils"

	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	useMemory bool
)

var rootCmd = &cobra.Command{
	Use:   "hunter",
	Short: "Overnight career page crawler",
	Long: `Hunter visits company career pages on a schedule, filters postings
against your persona with an LLM (or keyword tags as a fallback) and keeps
the new matches for the morning.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigPath, "YAML config file")
	rootCmd.PersistentFlags().BoolVar(&useMemory, "memory", false, "use an in-memory store instead of Postgres")

	rootCmd.AddCommand(serveCmd, crawlCmd, logsCmd, migrateCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	log.Printf("🔧 Config loaded. Schedules: %v, timezone: %s", cfg.Schedules, cfg.Timezone)
	return cfg, nil
}

// openStore returns the configured store and a close func
func openStore(ctx context.Context, cfg *config.Config) (database.Store, func(), error) {
	if useMemory {
		log.Println("🧠 Using in-memory store, nothing will be persisted")
		return database.NewMemoryStore(), func() {}, nil
	}
	if err := cfg.RequireDatabase(); err != nil {
		return nil, nil, err
	}

	repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		repo.Close()
		return nil, nil, err
	}
	log.Println("🗄️ Connected to Postgres")
	return repo, repo.Close, nil
}

func buildReporter(cfg *config.Config) reporter.Reporter {
	reporters := reporter.Multi{reporter.LogReporter{}}
	if !cfg.TelegramEnabled() {
		return reporters
	}

	bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Printf("⚠️ Telegram disabled: %v", err)
		return reporters
	}
	log.Println("🤖 Telegram Bot initialized.")
	return append(reporters, reporter.NewTelegramReporter(bot))
}

func buildOrchestrator(cfg *config.Config, store database.Store) *orchestrator.Orchestrator {
	client := ai.NewGrokClient(cfg.GroqAPIKey, cfg.AIModel, cfg.AIBaseURL)
	if !client.Available() {
		log.Println("⚠️ GROQ_API_KEY not set, classifier will use keyword tags only")
	}

	launcher := browser.NewLauncher(cfg.Headless, cfg.CookiesPath)
	sessions := orchestrator.SessionFactoryFunc(func(ctx context.Context) (orchestrator.Session, error) {
		s, err := launcher.Open(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	})

	return orchestrator.New(orchestrator.Deps{
		Store:      store,
		Sessions:   sessions,
		Crawler:    scraper.NewCrawler(scraper.NewPaginator(), utils.NewScreenShotDebugger(cfg.ScreenshotDir)),
		Classifier: filter.NewClassifier(client),
		Saver:      dedup.NewSaver(store),
		Reporter:   buildReporter(cfg),
	})
}
