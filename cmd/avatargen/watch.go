package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Faultbox/facegen/internal/batch"
	"github.com/Faultbox/facegen/internal/logger"
	"github.com/Faultbox/facegen/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <input-dir>",
	Short: "Regenerate avatars whenever landmark files change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := openStore(ctx, false)
		if err != nil {
			return err
		}

		opts := batchOptions(db)
		opts.Logger = logger.Named("watch")
		w, err := watch.New(args[0], newService(), watch.Options{
			Options:  opts,
			Debounce: time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
			OnItem: func(item batch.Item) {
				if item.Err == nil {
					fmt.Println(item.Output.GLB)
				}
			},
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", args[0])
		return w.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
