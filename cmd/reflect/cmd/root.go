package cmd

import (
	"fmt"

	"github.com/rustyeddy/reflect/config"
	"github.com/rustyeddy/reflect/internal/logger"
	"github.com/rustyeddy/reflect/internal/session"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reflect",
	Short: "A mock stock trading journal that makes you think about every trade",
	Long: `Reflect is a simulated stock trading account with a trading journal.

It provides tools for:
  - Buying and selling at quoted prices against a virtual cash balance
  - Valuing the portfolio at current prices
  - Tagging trades with the emotion and reasoning behind them
  - Reviewing losing trades and tracking what was learned

Trades are journaled (CSV, SQLite or PostgreSQL) and the account is rebuilt
from the journal every time reflect starts.`,
	SilenceUsage: true,
}

var (
	cfgFile  string
	envFiles []string
	logLevel string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON; defaults when empty)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", nil, "env files to load (default .env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile, envFiles...)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// openSession loads the configuration and opens the account. The returned
// func closes the journal and flushes the logger.
func openSession(cmd *cobra.Command) (*session.Session, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	log, syncLog, err := logger.NewZapLogger(level)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	s, err := session.Open(cmd.Context(), cfg, log)
	if err != nil {
		syncLog()
		return nil, nil, err
	}
	return s, func() {
		if err := s.Close(); err != nil {
			log.Errorf("close journal: %v", err)
		}
		syncLog()
	}, nil
}
