package main

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/4RCAN3/EmoFlix/internal/config"
	logpkg "github.com/4RCAN3/EmoFlix/internal/logger"
)

// runtimeEnv is filled by the root PersistentPreRunE before any subcommand runs.
type runtimeEnv struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	rt := &runtimeEnv{}
	var (
		envName    string
		configPath string
	)

	root := &cobra.Command{
		Use:           "emoflix",
		Short:         "Emotion-transition movie recommender",
		Long:          `EmoFlix ranks movie plots by how well they follow a move from a current to a desired emotion.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			rt.env = envName
			if rt.env == "" {
				rt.env = config.GetEnv()
			}

			var err error
			if configPath != "" {
				rt.cfg, err = config.LoadFile(configPath)
			} else {
				rt.cfg, err = config.Load(rt.env)
			}
			if err != nil {
				return err
			}

			rt.logger, err = logpkg.NewLogger(rt.env, rt.cfg.Logging.Level)
			return err
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&envName, "env", "", "environment name, selects config/<env>.yaml (default $ENV or local)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "explicit config file path")

	root.AddCommand(
		newServeCmd(rt),
		newEmbedCmd(rt),
		newRecommendCmd(rt),
		newVersionCmd(),
	)
	return root
}
