package main

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/chatstat/internal/index"
	"github.com/Zuo-Peng/chatstat/internal/search"
	"github.com/Zuo-Peng/chatstat/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorBlue    = "\033[1;34m"
	sColorGreen   = "\033[1;32m"
	sColorDim     = "\033[2m"
)

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func tsvField(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ").Replace(s)
}

func searchCmd() *cobra.Command {
	var chat, sender, since string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across archived chats",
		Long: `Search archived messages using FTS5. Output is TSV for fzf integration:
  chatKey, msgId, time, chat, sender, snippet

Recommended shell function (add to .zshrc):
  chatf() {
    chatstat search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'chatstat preview {1} --hit {2} --context 5 --query {q}' \
      --preview-window=right:60%:wrap \
      --bind 'enter:execute(chatstat open {1} --hit {2})'
  }`,
		Args: cobra.ExactArgs(1),
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

			// keep the archive current before searching
			if _, err := index.IndexAll(db, cfg.ExportRoot); err != nil {
				log.WithError(err).Warn("update index")
			}

			opts := search.Options{
				Chat:   chat,
				Sender: sender,
				Since:  since,
				Limit:  limit,
			}

			// interactive TUI when stdout is a terminal, TSV for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(db, args[0], opts)
			}

			opts.Query = args[0]
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				// first two fields stay plain for fzf {1} {2}
				fmt.Printf("%s\t%d\t%s%s%s\t%s%s%s\t%s%s%s\t%s\n",
					r.ChatKey,
					r.MsgID,
					sColorDim, r.Ts, sColorReset,
					sColorBlue, tsvField(r.ChatName), sColorReset,
					sColorGreen, tsvField(r.Sender), sColorReset,
					colorizeSnippet(tsvField(r.Snippet)),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chat, "chat", "", "Only search the chat with this key")
	cmd.Flags().StringVar(&sender, "sender", "", "Only search messages from this sender")
	cmd.Flags().StringVar(&since, "since", "", "Only search messages since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")

	return cmd
}
