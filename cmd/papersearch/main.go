package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/PaperSearch/internal/config"
	"github.com/TobiSchelling/PaperSearch/internal/database"
	"github.com/TobiSchelling/PaperSearch/internal/dataset"
	"github.com/TobiSchelling/PaperSearch/internal/logging"
	"github.com/TobiSchelling/PaperSearch/internal/server"
)

var version = "dev"

var (
	verbose     bool
	configPath  string
	datasetPath string
	cfg         *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "papersearch",
	Short:   "Search a research paper repository",
	Long:    "PaperSearch searches, filters, sorts and exports a dataset of research paper metadata, in the terminal or in a local web UI.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			logging.Setup(os.Stderr, "info", verbose)
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if datasetPath != "" {
			cfg.Dataset.Path = datasetPath
		}

		logging.Setup(os.Stderr, cfg.Logging.Level, verbose)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&datasetPath, "dataset", "d", "", "Path to the dataset (CSV or SQLite mirror)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(collectCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("papersearch", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/papersearch/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to point dataset.path at your CSV file and to configure feeds.")
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		loader := dataset.NewLoader(cfg.Dataset.Path)
		fmt.Printf("Serving %s at http://localhost:%d\n", loader.Path(), port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(cmd.Context(), loader, cfg.Dataset.PageSize, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8501, "Port to run server on")
}

// loadDataset reads the configured dataset once for a single command.
func loadDataset(ctx context.Context) (*dataset.Dataset, error) {
	ds, err := dataset.NewLoader(cfg.Dataset.Path).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	return ds, nil
}

// openDB opens the SQLite mirror, creating its directory if needed.
func openDB(path string) (*database.DB, error) {
	if path == "" {
		path = cfg.GetDatabasePath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return database.Open(path)
}
