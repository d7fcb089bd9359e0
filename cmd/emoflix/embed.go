package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	logpkg "github.com/4RCAN3/EmoFlix/internal/logger"
)

func newEmbedCmd(rt *runtimeEnv) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Build and persist the plot embedding artifact",
		Long: `Encode every plot in the corpus and write the embedding artifact.
Without --force an existing artifact is only validated against the corpus.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = logpkg.ContextWithLogger(ctx, rt.logger)

			a, err := newApp(ctx, rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.loadCatalog(ctx, force); err != nil {
				return err
			}
			rt.logger.Info("Embedding artifact ready",
				zap.String("path", rt.cfg.Store.Path),
				zap.Bool("rebuilt", force),
			)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "rebuild even when an artifact already exists")
	return cmd
}
