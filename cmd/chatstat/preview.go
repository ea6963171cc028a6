package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatstat/internal/index"
	"github.com/Zuo-Peng/chatstat/internal/render"
)

func previewCmd() *cobra.Command {
	var hitMsgID, context, width int
	var query string
	var noColor bool

	cmd := &cobra.Command{
		Use:   "preview <chatKey>",
		Short: "Preview an archived chat around a hit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			out, _, err := render.RenderConversation(db, args[0], render.Options{
				HitMsgID: hitMsgID,
				Context:  context,
				Width:    width,
				Query:    query,
				NoColor:  noColor || cfg.Color == "never",
			})
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&hitMsgID, "hit", -1, "Message ID to highlight")
	cmd.Flags().IntVar(&context, "context", 10, "Messages before/after hit to show (-1 = all)")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (0 = no wrap)")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable ANSI colours")

	return cmd
}
