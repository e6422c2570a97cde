package main

import (
	"errors"

	"github.com/bilgisen/weeklyissue/internal/cache"
	"github.com/bilgisen/weeklyissue/internal/logger"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the published-story history",
}

var historyResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget every published story so they may appear again",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}
		if cfg.RedisURL == "" {
			return errors.New("REDIS_URL is not set")
		}

		history, err := cache.NewRedisHistory(cmd.Context(), cfg.RedisURL, cfg.RedisPrefix, cfg.HistoryTTL)
		if err != nil {
			return err
		}
		defer history.Close()

		if err := history.Clear(cmd.Context()); err != nil {
			return err
		}
		logger.Get().Info().Str("prefix", cfg.RedisPrefix).Msg("History cleared")
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyResetCmd)
	rootCmd.AddCommand(historyCmd)
}
