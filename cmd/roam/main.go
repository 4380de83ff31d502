package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/config"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/infra/logger"
)

var (
	dbPath  string
	logPath string

	cfg    config.Config
	appLog *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "roam",
	Short: "Roam Romance in the terminal",
	Long: `Swipe through nearby profiles from the terminal.

Sign in once with 'roam login', then run 'roam swipe'. Drag a card with the
mouse or use the arrow keys; free accounts get five likes per day.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		cfgPath := os.Getenv("APP_CONFIG")
		if cfgPath == "" {
			cfgPath = "configs/config.yaml"
		}
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded

		if dbPath == "" {
			dbPath = cfg.Local.DBPath
		}
		if dbPath == "" {
			dbPath = filepath.Join(dataDir(), "device.db")
		}
		if logPath == "" {
			logPath = filepath.Join(dataDir(), "roam.log")
		}
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}

		appLog, err = logger.NewFile(cfg.Log.Level, logPath)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLog != nil {
			_ = appLog.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Device database (default: ~/.roam/device.db)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Log file (default: ~/.roam/roam.log)")

	loginCmd.Flags().StringVar(&loginName, "name", "", "Display name (required)")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email address")
	_ = loginCmd.MarkFlagRequired("name")

	matchesCmd.Flags().IntVar(&matchesLimit, "limit", 50, "Maximum matches to list")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(swipeCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(quotaCmd)
	rootCmd.AddCommand(upgradeCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".roam"
	}
	return filepath.Join(home, ".roam")
}
