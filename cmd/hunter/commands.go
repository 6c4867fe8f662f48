package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go-career-hunter/internal/ai"
	"go-career-hunter/internal/api"
	"go-career-hunter/internal/browser"
	"go-career-hunter/internal/database"
	"go-career-hunter/internal/models"
	"go-career-hunter/internal/scheduler"
	"go-career-hunter/utils"

	"github.com/gin-gonic/gin"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var logsLimit int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler and the operator API",
	RunE:  runServe,
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run one manual batch now and wait for it",
	RunE:  runCrawl,
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent batch runs",
	RunE:  runLogs,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create database tables and indexes",
	RunE:  runMigrate,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Print the effective configuration and test the database",
	RunE:  runCheck,
}

func init() {
	logsCmd.Flags().IntVar(&logsLimit, "limit", 10, "number of runs to show")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	orch := buildOrchestrator(cfg, store)
	sched := scheduler.New(orch, store, cfg.Schedules, loc)
	sched.Init(ctx)

	gin.SetMode(gin.ReleaseMode)
	router := api.SetupRoutes(api.NewHandler(store, sched, loc), cfg.FrontendURL)
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("🚀 Server listening on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Println("🛑 Shutting down...")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ HTTP shutdown: %v", err)
	}
	if err := sched.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Scheduler shutdown: %v", err)
	}
	log.Println("🏁 Bye.")
	return nil
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	runLog, err := buildOrchestrator(cfg, store).RunBatch(ctx, models.TriggerManual)
	if runLog != nil {
		renderRunLogs([]models.RunLog{*runLog})
	}
	return err
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	logs, err := store.LatestRunLogs(ctx, logsLimit)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}
	renderRunLogs(logs)
	return nil
}

func renderRunLogs(logs []models.RunLog) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Batch Time", "Trigger", "Status", "URLs", "Jobs", "Errors", "Duration"})
	for _, l := range logs {
		table.Append([]string{
			l.BatchTime.Format("2006-01-02 15:04:05"),
			string(l.TriggerType),
			string(l.Status),
			strconv.Itoa(l.URLsScanned),
			strconv.Itoa(l.JobsFound),
			strconv.Itoa(len(l.Errors)),
			utils.FormatDuration(l.Duration),
		})
	}
	table.Render()

	for _, l := range logs {
		for _, e := range l.Errors {
			fmt.Printf("⚠️ %s  %s: %s\n", e.Timestamp.Format("15:04:05"), e.URL, e.Message)
		}
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	repo, err := database.ConnectDB(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.EnsureSchema(cmd.Context()); err != nil {
		return err
	}
	log.Println("✅ Schema is up to date")
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	dbStatus := "not configured"
	if cfg.DatabaseURL != "" {
		dbStatus = checkDatabase(ctx, cfg.DatabaseURL)
	}

	cookieStatus := "none"
	if cookies, err := browser.LoadCookieDir(cfg.CookiesPath); err != nil {
		cookieStatus = "error: " + err.Error()
	} else if len(cookies) > 0 {
		cookieStatus = fmt.Sprintf("%d cookies", len(cookies))
	}

	aiStatus := "keyword fallback only"
	if ai.NewGrokClient(cfg.GroqAPIKey, cfg.AIModel, cfg.AIBaseURL).Available() {
		aiStatus = cfg.AIModel
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Setting", "Value"})
	table.Append([]string{"Database", dbStatus})
	table.Append([]string{"AI classifier", aiStatus})
	table.Append([]string{"Schedules", fmt.Sprint(cfg.Schedules)})
	table.Append([]string{"Timezone", cfg.Timezone})
	table.Append([]string{"Headless", strconv.FormatBool(cfg.Headless)})
	table.Append([]string{"Cookies", fmt.Sprintf("%s (%s)", cfg.CookiesPath, cookieStatus)})
	table.Append([]string{"Screenshots", cfg.ScreenshotDir})
	table.Append([]string{"Telegram", strconv.FormatBool(cfg.TelegramEnabled())})
	table.Append([]string{"HTTP port", cfg.HTTPPort})
	table.Render()
	return nil
}

func checkDatabase(ctx context.Context, url string) string {
	repo, err := database.ConnectDB(ctx, url)
	if err != nil {
		return "error: " + err.Error()
	}
	defer repo.Close()

	version, size, err := repo.ServerVersion(ctx)
	if err != nil {
		return "error: " + err.Error()
	}
	return fmt.Sprintf("ok, %s (%s)", size, strings.SplitN(version, ",", 2)[0])
}
