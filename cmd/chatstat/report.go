package main

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/chatstat/internal/config"
	"github.com/Zuo-Peng/chatstat/internal/index"
	"github.com/Zuo-Peng/chatstat/internal/parse"
	"github.com/Zuo-Peng/chatstat/internal/render"
	"github.com/Zuo-Peng/chatstat/internal/stats"
)

func reportCmd() *cobra.Command {
	var all bool
	var format, chat, phrase string
	var top int
	selected := make(map[string]*bool)

	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Print statistics for a chat export",
		Long: `Parse a WhatsApp chat export and print the selected reports.
Reports run in a fixed order regardless of flag order. Instead of a file,
--chat reads a chat from the archive built by 'chatstat index'.`,
		Example: `  chatstat report -M -u "WhatsApp Chat mit Oma.txt"
  chatstat report --all --format json export.txt
  chatstat report -p pizza --chat family/Oma`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var keys []string
			if all {
				keys = stats.AllKeys()
			} else {
				for _, d := range stats.Definitions {
					if d.NeedsPhrase {
						if phrase != "" {
							keys = append(keys, d.Key)
						}
						continue
					}
					if *selected[d.Key] {
						keys = append(keys, d.Key)
					}
				}
			}
			if len(keys) == 0 {
				return fmt.Errorf("no report selected, see 'chatstat report --help'")
			}

			if !cmd.Flags().Changed("format") {
				format = cfg.Format
			}
			if !render.ValidFormat(format) {
				return fmt.Errorf("unknown format: %s", format)
			}
			if !cmd.Flags().Changed("top") {
				top = cfg.Top
			}

			_, msgs, err := loadMessages(cfg, args, chat)
			if err != nil {
				return err
			}

			reports, err := stats.Run(msgs, keys, stats.Params{Phrase: phrase})
			if err != nil {
				return err
			}
			return render.WriteReports(cmd.OutOrStdout(), reports, format, render.ReportOptions{
				Top:   top,
				Color: useColor(cfg.Color),
			})
		},
	}

	for _, d := range stats.Definitions {
		if d.NeedsPhrase {
			cmd.Flags().StringVarP(&phrase, d.Key, d.Short, "", d.Usage)
			continue
		}
		selected[d.Key] = cmd.Flags().BoolP(d.Key, d.Short, false, d.Usage)
	}
	cmd.Flags().BoolVar(&all, "all", false, "Print every report")
	cmd.Flags().StringVarP(&format, "format", "o", "text", "Output format (text/json/yaml)")
	cmd.Flags().IntVarP(&top, "top", "n", 0, "Max ranking rows (0 = all)")
	cmd.Flags().StringVar(&chat, "chat", "", "Read an archived chat by key instead of a file")

	return cmd
}

// loadMessages reads messages from the export given as the only argument,
// or from the archive when chatKey is set. It returns a display name too.
func loadMessages(cfg *config.Config, args []string, chatKey string) (string, []parse.Message, error) {
	if chatKey != "" {
		if len(args) > 0 {
			return "", nil, fmt.Errorf("pass either a file or --chat, not both")
		}
		db, err := index.OpenDB(cfg.DBPath)
		if err != nil {
			return "", nil, err
		}
		defer db.Close()

		chat, err := db.GetChatByKey(chatKey)
		if err != nil {
			return "", nil, err
		}
		if chat == nil {
			return "", nil, fmt.Errorf("chat not found: %s (run 'chatstat index' first)", chatKey)
		}
		msgs, err := db.LoadMessages(chatKey)
		return chat.Name, msgs, err
	}

	if len(args) == 0 {
		return "", nil, fmt.Errorf("no export file given")
	}
	path := args[0]
	result, err := parse.ParseFile(path, filepath.Dir(path))
	if err != nil {
		return "", nil, err
	}
	log.WithFields(log.Fields{"chat": result.Meta.Name, "messages": len(result.Messages)}).Debug("loaded export")
	return result.Meta.Name, result.Messages, nil
}

func useColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	return os.Getenv("NO_COLOR") == "" && term.IsTerminal(int(os.Stdout.Fd()))
}
