package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatstat/internal/index"
	"github.com/Zuo-Peng/chatstat/internal/open"
)

func openCmd() *cobra.Command {
	var hitMsgID int

	cmd := &cobra.Command{
		Use:   "open <chatKey>",
		Short: "Open the export file in $EDITOR at the hit line",
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

			return open.OpenChat(db, args[0], hitMsgID)
		},
	}

	cmd.Flags().IntVar(&hitMsgID, "hit", -1, "Message ID to jump to")

	return cmd
}
