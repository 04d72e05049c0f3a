package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/facegen/internal/face"
)

var sampleOpts struct {
	out   string
	shape string
	face.ExpressionSet
	face.AccessorySet
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a synthetic landmark file (468 points on a unit sphere)",
	RunE: func(cmd *cobra.Command, args []string) error {
		shape, err := face.ParseFaceShape(sampleOpts.shape)
		if err != nil {
			return err
		}
		in := face.SampleInput()
		in.FaceShape = shape
		in.Expressions = sampleOpts.ExpressionSet
		in.Accessories = sampleOpts.AccessorySet

		data, err := json.MarshalIndent(in, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')
		if sampleOpts.out == "" || sampleOpts.out == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}
		return os.WriteFile(sampleOpts.out, data, 0o644)
	},
}

func init() {
	f := sampleCmd.Flags()
	f.StringVarP(&sampleOpts.out, "file", "f", "-", "Output file (- for stdout)")
	f.StringVar(&sampleOpts.shape, "shape", "oval", "Face shape: oval, round, square, heart, oblong")
	f.BoolVar(&sampleOpts.Smile, "smile", false, "Set the smile expression")
	f.BoolVar(&sampleOpts.Frown, "frown", false, "Set the frown expression")
	f.BoolVar(&sampleOpts.RaisedEyebrows, "raised-eyebrows", false, "Set the raised eyebrows expression")
	f.BoolVar(&sampleOpts.Squint, "squint", false, "Set the squint expression")
	f.BoolVar(&sampleOpts.Surprise, "surprise", false, "Set the surprise expression")
	f.BoolVar(&sampleOpts.Glasses, "glasses", false, "Add glasses")
	f.BoolVar(&sampleOpts.Earrings, "earrings", false, "Add earrings")
	f.BoolVar(&sampleOpts.Hat, "hat", false, "Add a hat")
	rootCmd.AddCommand(sampleCmd)
}
