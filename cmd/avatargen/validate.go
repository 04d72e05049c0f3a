package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/facegen/pkg/glb"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.glb>...",
	Short: "Check GLB container headers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			if err := validateFile(path); err != nil {
				fmt.Printf("FAIL %s: %v\n", path, err)
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files invalid", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	size, err := glb.Validate(data)
	if err != nil {
		return err
	}
	fmt.Printf("OK   %s (%d bytes)\n", path, size)
	return nil
}
