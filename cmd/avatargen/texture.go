package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/facegen/internal/face"
	"github.com/Faultbox/facegen/internal/material"
)

var textureOpts struct {
	tone string
	out  string
}

var textureCmd = &cobra.Command{
	Use:   "texture",
	Short: "Render a procedural skin texture preview",
	RunE: func(cmd *cobra.Command, args []string) error {
		tone, err := face.ParseRGB(textureOpts.tone)
		if err != nil {
			return err
		}
		format := material.FormatPNG
		if strings.EqualFold(filepath.Ext(textureOpts.out), ".webp") {
			format = material.FormatWebP
		}

		img := material.Synthesize(
			face.SkinTone{R: tone.R, G: tone.G, B: tone.B},
			cfg.Generation.TextureSize,
			material.NewRNG(cfg.Generation.Seed),
		)
		data, err := format.Encode(img)
		if err != nil {
			return err
		}
		if err := os.WriteFile(textureOpts.out, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("%s (%dx%d %s, %d bytes)\n", textureOpts.out, img.Width, img.Height, format, len(data))
		return nil
	},
}

func init() {
	textureCmd.Flags().StringVar(&textureOpts.tone, "tone", "#c89678", "Skin tone as #rrggbb")
	textureCmd.Flags().StringVarP(&textureOpts.out, "file", "f", "skin.png", "Output image (.png or .webp)")
	rootCmd.AddCommand(textureCmd)
}
