package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatstat/internal/index"
	"github.com/Zuo-Peng/chatstat/internal/search"
	"github.com/Zuo-Peng/chatstat/internal/tui"
)

func listCmd() *cobra.Command {
	var since string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse archived chats by last activity",
		Long:  `Opens a TUI panel showing all archived chats, most recently active first. Type to search their messages.`,
		Args:  cobra.NoArgs,
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

			if _, err := index.IndexAll(db, cfg.ExportRoot); err != nil {
				log.WithError(err).Warn("update index")
			}

			return tui.RunList(db, search.Options{Since: since, Limit: limit})
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only chats active since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max chats (0 = no limit)")

	return cmd
}
