package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Faultbox/facegen/internal/exporter"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.glb>",
	Short: "Show the container layout and scene summary of a GLB file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		sum, err := exporter.Inspect(data)
		if err != nil {
			return err
		}
		if inspectJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		}
		printSummary(args[0], sum)
		return nil
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Print the summary as JSON")
	rootCmd.AddCommand(inspectCmd)
}

func printSummary(path string, sum *exporter.Summary) {
	fmt.Printf("File:      %s\n", path)
	fmt.Printf("Version:   %d\n", sum.Version)
	fmt.Printf("Size:      %d bytes\n", sum.Size)
	fmt.Printf("Generator: %s\n", sum.Generator)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "CHUNK\tTYPE\tLENGTH")
	for i, c := range sum.Chunks {
		fmt.Fprintf(w, "%d\t%s\t%d\n", i, c.Type, c.Length)
	}
	w.Flush()
	fmt.Println()

	fmt.Printf("Nodes:     %s\n", strings.Join(sum.Nodes, ", "))
	fmt.Printf("Meshes:    %d (%d vertices, %d triangles)\n", sum.Meshes, sum.Vertices, sum.Triangles)
	fmt.Printf("Materials: %d\n", sum.Materials)
	fmt.Printf("Textures:  %d (%d images)\n", sum.Textures, sum.Images)
	if len(sum.Extensions) > 0 {
		fmt.Printf("Extensions: %s\n", strings.Join(sum.Extensions, ", "))
	}
	if len(sum.Extras) > 0 {
		fmt.Printf("Extras:    %s\n", sum.Extras)
	}
}
