package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/facegen/internal/batch"
	"github.com/Faultbox/facegen/internal/face"
	"github.com/Faultbox/facegen/internal/output"
)

var generateOpts struct {
	clothing string
	texture  string
	name     string
}

var generateCmd = &cobra.Command{
	Use:   "generate <face.json>",
	Short: "Generate one avatar from a landmark file",
	Long: `Generate one avatar from a landmark file.

Clothing and texture files next to the input (alice.clothing.json,
alice.png) are picked up automatically; --clothing and --texture override
them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, args[0])
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateOpts.clothing, "clothing", "", "Clothing classification JSON")
	generateCmd.Flags().StringVar(&generateOpts.texture, "texture", "", "Face texture image (png, jpeg, webp, bmp, tga)")
	generateCmd.Flags().StringVarP(&generateOpts.name, "name", "n", "", "Output name (default: input file name)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, input string) error {
	ctx := cmd.Context()

	req, err := batch.LoadRequest(input)
	if err != nil {
		return err
	}
	if generateOpts.clothing != "" {
		if req.Clothing, err = face.LoadClothing(generateOpts.clothing); err != nil {
			return err
		}
	}
	if generateOpts.texture != "" {
		if req.Texture, err = os.ReadFile(generateOpts.texture); err != nil {
			return err
		}
	}

	db, err := openStore(ctx, false)
	if err != nil {
		return err
	}

	res, err := newService().Generate(ctx, req)
	if err != nil {
		logFailure("generation failed", err)
		return err
	}

	name := generateOpts.name
	if name == "" {
		name = output.NameFor(input)
	}
	paths, err := output.WriteAvatar(cfg.Output.Dir, name, res, cfg.Output.WriteMetadata)
	if err != nil {
		return err
	}
	if db != nil {
		if err := db.SaveAvatar(ctx, res.Metadata, paths.GLB); err != nil {
			return err
		}
	}

	m := res.Metadata
	fmt.Println(paths.GLB)
	fmt.Fprintf(os.Stderr, "id=%s vertices=%d faces=%d size=%d texture=%t time=%.1fms\n",
		m.ID, m.VertexCount, m.FaceCount, m.GLBSize, m.TextureEmbedded, m.GenerationTimeMs)
	for _, w := range m.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return nil
}
