package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Faultbox/facegen/internal/batch"
)

var batchCmd = &cobra.Command{
	Use:   "batch <input-dir>",
	Short: "Generate avatars for every landmark file in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args[0])
	},
}

func init() {
	batchCmd.Flags().IntVarP(&flags.Workers, "workers", "w", 0, "Concurrent generations (default from config)")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, dir string) error {
	ctx := cmd.Context()

	if err := batch.CheckDirs(dir, cfg.Output.Dir); err != nil {
		return err
	}
	paths, err := batch.Collect(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "No face inputs in %s\n", dir)
		return nil
	}

	db, err := openStore(ctx, false)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Generating %d avatars with %d workers...\n", len(paths), cfg.Batch.Workers)
	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("avatars"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	opts := batchOptions(db)
	opts.Progress = func(batch.Item) { bar.Add(1) }
	sum := batch.Run(ctx, newService(), paths, opts)
	bar.Finish()

	for _, item := range sum.Items {
		if item.Err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", item.Path, item.Err)
			continue
		}
		fmt.Println(item.Output.GLB)
	}
	fmt.Fprintf(os.Stderr, "%d succeeded, %d failed\n", sum.Succeeded, sum.Failed)

	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d avatars failed", sum.Failed, len(paths))
	}
	return nil
}
