package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/tm-roles/internal/config"
	"github.com/pfrederiksen/tm-roles/internal/logger"
	"github.com/pfrederiksen/tm-roles/internal/metrics"
	"github.com/pfrederiksen/tm-roles/internal/notify"
	"github.com/pfrederiksen/tm-roles/internal/scraper"
	"github.com/pfrederiksen/tm-roles/internal/service"
	"github.com/pfrederiksen/tm-roles/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// app holds what a command needs once flags and config are resolved
type app struct {
	configPath string
	dataDir    string
	format     string
	verbose    bool

	cfg     *config.Config
	store   *storage.Storage
	metrics *metrics.Collector
	svc     *service.Service

	// newFetcher and newNotifier are replaced in tests
	newFetcher  func(cfg *config.Config) (service.Fetcher, error)
	newNotifier func(cfg *config.Config, dryRun bool, out io.Writer) (notify.Notifier, error)
}

func newApp() *app {
	return &app{
		newFetcher:  defaultFetcher,
		newNotifier: defaultNotifier,
	}
}

func defaultFetcher(cfg *config.Config) (service.Fetcher, error) {
	sc, err := cfg.Scraper()
	if err != nil {
		return nil, err
	}
	return scraper.New(sc), nil
}

func defaultNotifier(cfg *config.Config, dryRun bool, out io.Writer) (notify.Notifier, error) {
	if dryRun {
		return notify.NewDryRun(out), nil
	}
	token, err := cfg.TelegramToken()
	if err != nil {
		return nil, err
	}
	return notify.NewTelegram(token, cfg.Telegram.ChatID)
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tm-roles",
		Short: "Suggest fair Toastmasters meeting role assignments",
		Long: `tm-roles scrapes meeting agendas from the club site, stores them, and
suggests who should fill each open role, favouring members who have not held
that role in their last three meetings.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "tm-roles.yaml", "Path to the YAML config file")
	cmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "Data directory for the database (overrides config)")
	cmd.PersistentFlags().StringVar(&a.format, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(
		newSyncCmd(a),
		newSuggestCmd(a),
		newAssignmentsCmd(a),
		newMembersCmd(a),
		newServeCmd(a),
		newEncryptSecretCmd(a),
	)
	return cmd
}

// execute runs cmd and releases the app's resources whether or not it failed
func execute(a *app, cmd *cobra.Command) error {
	defer a.close()
	return cmd.Execute()
}

// setup loads config, configures logging and opens storage
func (a *app) setup(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(a.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", a.format)
	}
	a.format = string(format)

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dataDir != "" {
		cfg.Storage.DataDir = a.dataDir
	}
	a.cfg = cfg

	level := cfg.LogLevel()
	if a.verbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	// these need no database
	if cmd.Name() == "encrypt-secret" || cmd.Name() == "help" {
		return nil
	}

	store, err := storage.New(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	a.store = store
	logger.Debug("Storage opened", logger.Fields{"path": store.Path()})

	a.metrics = metrics.NewCollector()
	a.svc = service.New(store, lazyFetcher{a: a}, cfg.Engine(), a.metrics)
	return nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logger.Warn("Closing storage failed", logger.Fields{"error": err.Error()})
		}
		a.store = nil
	}
	logger.Default().Sync() // nolint:errcheck
}

func (a *app) outputFormat() OutputFormat {
	return OutputFormat(a.format)
}

// Execute runs the CLI
func Execute() {
	a := newApp()
	if err := execute(a, newRootCmd(a)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
