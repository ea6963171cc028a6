package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/chatstat/internal/stats"
	"github.com/Zuo-Peng/chatstat/internal/tui"
)

func browseCmd() *cobra.Command {
	var chat, phrase string
	var top int

	cmd := &cobra.Command{
		Use:   "browse [file]",
		Short: "Browse every report of a chat in a terminal UI",
		Long:  `Computes all reports once and shows them side by side. Enter copies the selected report to the clipboard.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("browse needs a terminal, use 'chatstat report --all' instead")
			}
			if !cmd.Flags().Changed("top") {
				top = cfg.Top
			}

			name, msgs, err := loadMessages(cfg, args, chat)
			if err != nil {
				return err
			}
			reports, err := stats.Run(msgs, stats.AllKeys(), stats.Params{Phrase: phrase})
			if err != nil {
				return err
			}
			return tui.RunReports(name, reports, top)
		},
	}

	cmd.Flags().StringVar(&chat, "chat", "", "Read an archived chat by key instead of a file")
	cmd.Flags().StringVarP(&phrase, "phrase", "p", "", "Phrase for the word ranking")
	cmd.Flags().IntVarP(&top, "top", "n", 0, "Max ranking rows (0 = all)")

	return cmd
}
