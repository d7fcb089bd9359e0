package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/4RCAN3/EmoFlix/internal/domain/movie"
	logpkg "github.com/4RCAN3/EmoFlix/internal/logger"
	recommenduc "github.com/4RCAN3/EmoFlix/internal/usecase/recommend"
)

func newRecommendCmd(rt *runtimeEnv) *cobra.Command {
	var (
		current string
		desired string
		topK    int
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print recommendations for an emotion transition as JSON",
		Example: `  emoflix recommend --current "anxious and tired" --desired "calm and hopeful" --top-k 3`,
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

			if err := a.loadCatalog(ctx, false); err != nil {
				return err
			}

			recs, err := a.recommend.Recommend(ctx, recommenduc.Request{
				CurrentEmotion: current,
				DesiredEmotion: desired,
				TopK:           topK,
			})
			if err != nil {
				return fmt.Errorf("recommend: %w", err)
			}

			if recs == nil {
				recs = []movie.Recommendation{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(recs)
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "how you feel now")
	cmd.Flags().StringVar(&desired, "desired", "", "how you want to feel")
	cmd.Flags().IntVar(&topK, "top-k", 0, "number of movies (0 = configured default)")
	_ = cmd.MarkFlagRequired("current")
	_ = cmd.MarkFlagRequired("desired")
	return cmd
}
