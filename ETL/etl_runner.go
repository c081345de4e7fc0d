package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/LilVoxy/db_restore/ETL/config"
	"github.com/LilVoxy/db_restore/ETL/extractors"
	"github.com/LilVoxy/db_restore/ETL/load"
	"github.com/LilVoxy/db_restore/ETL/models"
	"github.com/LilVoxy/db_restore/ETL/transform"
	"github.com/LilVoxy/db_restore/ETL/utils"
)

// Коды завершения процесса
const (
	exitOK      = 0
	exitFailure = 1
)

// RestoreRunner переносит данные из локальной БД в продакшн за один запуск
type RestoreRunner struct {
	config        config.RestoreConfig
	logger        *utils.ETLLogger
	console       *utils.Console
	input         io.Reader
	assumeYes     bool
	authenticator *load.Authenticator
	primary       extractors.Source
	fallback      extractors.Source
	filter        *transform.DefaultFilter
	loadManager   *load.LoadManager
}

// NewRestoreRunner создает новый экземпляр RestoreRunner
func NewRestoreRunner(cfg config.RestoreConfig, logger *utils.ETLLogger, out io.Writer, in io.Reader, assumeYes bool) *RestoreRunner {
	console := utils.NewConsole(out)

	return &RestoreRunner{
		config:        cfg,
		logger:        logger,
		console:       console,
		input:         in,
		assumeYes:     assumeYes,
		authenticator: load.NewAuthenticator(&http.Client{Timeout: cfg.RequestTimeout}, cfg.AuthURL(), logger, console),
		primary:       extractors.NewDatabaseSource(cfg.Source, logger, console),
		fallback:      extractors.NewSnapshotSource(cfg.SnapshotPath, logger, console),
		filter:        transform.NewDefaultFilter(cfg.Filter, logger, console),
		loadManager:   load.NewLoadManager(load.NewHTTPLoader(cfg.ImportURL, cfg.RequestTimeout, logger), logger, console),
	}
}

// Execute выполняет полный перенос и возвращает код завершения процесса
func (r *RestoreRunner) Execute(ctx context.Context) int {
	startTime := time.Now()
	r.logger.LogRestoreStart(r.config.BaseURL)

	r.console.Rule()
	r.console.Println("Database Restore: SQLite → Production")
	r.console.Rule()

	// 1. Аутентификация на продакшн-сервере
	r.console.Step("Step 1: Authenticating to production server")
	session, err := r.authenticator.Authenticate(ctx, r.config.AdminUID, r.config.AdminPassword)
	if err != nil {
		r.console.Printf("  ✗ Authentication failed: %v\n", err)
		r.console.Println("\nPlease check your credentials in app config or environment variables.")
		r.logger.Error("Аутентификация не удалась: %v", err)
		return exitFailure
	}

	// 2. Чтение локальных данных
	r.console.Step("Step 2: Reading local data from database")
	dataset, err := r.readDataset(ctx)
	if err != nil {
		return exitFailure
	}
	r.console.Counts("Found data types (before filtering)", dataset)

	// Фильтрация данных по умолчанию
	r.console.Step("Filtering out default/test data")
	dataset = r.filter.Apply(dataset)
	r.console.Println()
	r.console.Counts("Data to upload (after filtering)", dataset)

	if !r.confirm() {
		r.console.Println("Aborted.")
		r.logger.Info("Перенос отменён оператором")
		return exitOK
	}

	// 3. Загрузка всех категорий
	r.console.Step("Step 3: Uploading data to production (chunked)")
	result := r.loadManager.Load(ctx, dataset, session)

	r.printSummary(result)
	r.logger.LogRestoreComplete(startTime, result.TotalImported, result.TotalFailed, result.Success())

	if !result.Success() {
		return exitFailure
	}
	return exitOK
}

// readDataset читает локальную БД, а при ошибке - JSON-снимок
func (r *RestoreRunner) readDataset(ctx context.Context) (models.Dataset, error) {
	dataset, err := r.primary.ExtractAll(ctx)
	if err == nil {
		return dataset, nil
	}

	r.console.Printf("  ✗ Failed to read from database: %v\n", err)

	// Прерывание оператором не повод читать снимок
	if ctxErr := ctx.Err(); ctxErr != nil {
		r.console.Println("  ✗ Interrupted, not falling back to JSON backup")
		r.logger.Error("Чтение прервано: %v", ctxErr)
		return nil, ctxErr
	}

	r.console.Println("  Trying to read from JSON backup instead...")

	dataset, err = r.fallback.ExtractAll(ctx)
	if err != nil {
		r.console.Printf("  ✗ Failed to read local data: %v\n", err)
		r.logger.Error("Не удалось прочитать ни БД, ни снимок: %v", err)
		return nil, err
	}
	return dataset, nil
}

// confirm спрашивает подтверждение. Продолжение только при вводе ровно "y".
func (r *RestoreRunner) confirm() bool {
	r.console.Println("\n⚠️  WARNING: This will upload data to production!")
	r.console.Println("Do you want to continue? (y/n)")

	if r.assumeYes {
		r.console.Println("y (--yes)")
		return true
	}

	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.TrimSpace(line) == "y"
}

// printSummary печатает итоговую таблицу по категориям
func (r *RestoreRunner) printSummary(result *models.UploadResult) {
	success := result.Success()

	r.console.Println()
	r.console.Rule()
	if success {
		r.console.Println("✓ Data upload complete!")
	} else {
		r.console.Println("✗ Data upload had failures!")
	}

	r.console.Println("\n=== Import Summary ===")
	for _, res := range result.Results {
		status := "✓"
		if res.Stats.Failed > 0 {
			status = "⚠"
			if !success {
				status = "✗"
			}
		}
		r.console.Printf("  %s %s: %d imported, %d failed\n", status, res.Category, res.Stats.Imported, res.Stats.Failed)
	}
	r.console.Rule()
}

// Snapshot сохраняет локальную БД в JSON-снимок, который потом служит запасным источником
func Snapshot(ctx context.Context, cfg config.RestoreConfig, logger *utils.ETLLogger, out io.Writer, path string) error {
	console := utils.NewConsole(out)

	dataset, err := extractors.NewDatabaseSource(cfg.Source, logger, console).ExtractAll(ctx)
	if err != nil {
		return err
	}

	if err := extractors.WriteSnapshot(path, dataset); err != nil {
		return err
	}

	console.Printf("  Snapshot written to %s (%d categories)\n", path, len(dataset.Keys()))
	logger.Info("Снимок сохранён в %s", path)
	return nil
}

var (
	// Глобальные флаги
	configPath string
	verbose    bool
	assumeYes  bool
	outPath    string

	exitCode = exitOK
)

var rootCmd = &cobra.Command{
	Use:   "db_restore",
	Short: "Restore local database records to the production server",
	Long: `Reads every record from the local database (or the JSON snapshot when the
database cannot be read), drops default/seed data and uploads each data type
to its import endpoint on the production server.

Before uploading it asks for confirmation. Only a lowercase "y" proceeds;
"Y", "yes" or an empty line abort the run with exit code 0. Pass --yes to
skip the prompt in scripts.`,
	SilenceUsage: true,
	RunE:         runRestore,
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Upload local data to production (default command)",
	Long: `Uploads local data to production. The confirmation prompt accepts only a
lowercase "y"; any other answer aborts. Pass --yes to skip the prompt.`,
	RunE:  runRestore,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Write the local database to the JSON snapshot used as fallback",
	RunE:  runSnapshot,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt (it accepts only lowercase y)")
	restoreCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt (it accepts only lowercase y)")
	snapshotCmd.Flags().StringVarP(&outPath, "out", "o", "", "snapshot path (default: snapshot_path from config)")

	rootCmd.AddCommand(restoreCmd, snapshotCmd)
}

// setup загружает конфигурацию и создает логгер запуска
func setup() (config.RestoreConfig, *utils.ETLLogger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return cfg, nil, err
	}

	logger, err := utils.NewETLLogger(verbose || cfg.EnableDetailedLogging, cfg.LogDir, uuid.NewString())
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signalContext(logger)
	defer cancel()

	runner := NewRestoreRunner(cfg, logger, cmd.OutOrStdout(), cmd.InOrStdin(), assumeYes)
	exitCode = runner.Execute(ctx)
	return nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signalContext(logger)
	defer cancel()

	path := outPath
	if path == "" {
		path = cfg.SnapshotPath
	}
	return Snapshot(ctx, cfg, logger, cmd.OutOrStdout(), path)
}

// signalContext создает контекст, который отменяется при SIGINT/SIGTERM
func signalContext(logger *utils.ETLLogger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signalCh)
		select {
		case <-signalCh:
			logger.Info("Получен сигнал завершения, отмена запросов")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}
	os.Exit(exitCode)
}
