// Package cmd provides the CLI commands for the Dugger application.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/duggerlink/dugger/internal/adapters/git"
	"github.com/duggerlink/dugger/internal/adapters/notification"
	"github.com/duggerlink/dugger/internal/adapters/storage"
	"github.com/duggerlink/dugger/internal/adapters/tui"
	"github.com/duggerlink/dugger/internal/config"
	"github.com/duggerlink/dugger/internal/domain"
	"github.com/duggerlink/dugger/internal/ports"
	"github.com/duggerlink/dugger/internal/services"
)

var (
	// Version info (set at build time via ldflags)
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"

	// Global flags
	dbPath     string
	jsonOutput bool

	// Global dependencies
	storageAdapter ports.Storage
	gitInspector   *git.StateProvider
	projectService *services.ProjectService
	notifier       *notification.Notifier
	appConfig      *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dugger",
	Short: "Dugger - read-only project and repository health inspector",
	Long: `Dugger inspects the git state of your projects without ever
mutating them. It keeps a registry of repositories, scores their
health, and exposes the same facts over an MCP server.

Run "dugger" with no arguments to open the interactive dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeServices()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cleanupServices()
	},
	RunE: runDashboard,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the database file (default: ~/.dugger/dugger.db)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")

	// Set version - cobra handles --version automatically
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("Dugger\nVersion: {{.Version}}\n")

	// Add subcommands
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(todosCmd)
	rootCmd.AddCommand(mcpCmd)
}

// initializeServices sets up all the required services and adapters.
func initializeServices() error {
	// Load configuration
	var err error
	appConfig, err = config.Load()
	if err != nil {
		// If config loading fails, use defaults
		appConfig = config.DefaultConfig()
	}

	// Initialize notifier
	notifier = notification.New(&appConfig.Notifications)

	// Determine database path
	if dbPath == "" {
		dbPath = config.GetDBPath(appConfig)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	// Initialize storage
	storageAdapter, err = storage.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Initialize the git inspector with the configured cache lifetimes
	runner := git.NewRunner(time.Duration(appConfig.Git.Timeout))
	gitInspector = git.NewStateProvider(runner, appConfig.Git.ToTTLConfig())

	// Initialize services
	projectService = services.NewProjectService(storageAdapter, gitInspector)
	projectService.SetBaseScore(appConfig.Health.BaseScore)
	projectService.SetHealthyThreshold(appConfig.Health.HealthyThreshold)
	if notifier.IsEnabled() {
		projectService.SetNotifier(notifier)
	}

	return nil
}

// cleanupServices closes all resources.
func cleanupServices() error {
	if storageAdapter != nil {
		return storageAdapter.Close()
	}
	return nil
}

// runDashboard opens the interactive project dashboard for bare "dugger".
func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	dashboard := tui.NewDashboard(&appConfig.Theme, appConfig.Health.HealthyThreshold)
	dashboard.SetFetchProjects(func() ([]*domain.Project, error) {
		return projectService.ListProjects(ctx)
	})
	dashboard.SetRefreshAll(func() ([]*domain.Project, error) {
		return projectService.RefreshAll(ctx)
	})

	return dashboard.Run()
}
