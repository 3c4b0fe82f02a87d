package main

import (
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var batchConcurrency int

var batchCmd = &cobra.Command{
	Use:   "batch <file>...",
	Short: "Process multiple lease documents concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		limit := batchConcurrency
		if limit <= 0 {
			limit = cfg.Batch.MaxConcurrentDocuments
		}
		if limit <= 0 {
			limit = 1
		}

		var processed, failed atomic.Int64

		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for _, path := range args {
			g.Go(func() error {
				if _, procErr := processFile(gCtx, env, path); procErr != nil {
					// one bad document never stops the batch
					failed.Add(1)
					zap.L().Error("batch: document failed",
						zap.String("file", path),
						zap.Error(procErr),
					)
					return nil
				}
				processed.Add(1)
				return nil
			})
		}
		_ = g.Wait()

		fmt.Printf("Processed %d documents, %d failed\n", processed.Load(), failed.Load())
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max concurrent documents (default from config)")
	rootCmd.AddCommand(batchCmd)
}
