package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List avatars recorded in the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openStore(ctx, true)
		if err != nil {
			return err
		}
		records, err := db.ListAvatars(ctx, listLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No avatars found in database.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tSHAPE\tSTYLE\tSIZE\tTEXTURE\tCREATED\tPATH")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\t%s\t%s\n",
				r.ID, r.FaceShape, r.Style, r.GLBSize, r.TextureEmbedded,
				r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Path)
		}
		return w.Flush()
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the stored metadata of one avatar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openStore(ctx, true)
		if err != nil {
			return err
		}
		rec, err := db.GetAvatar(ctx, args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 50, "Maximum rows (0 = all)")
	rootCmd.AddCommand(listCmd, showCmd)
}
