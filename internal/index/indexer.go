package index

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/Zuo-Peng/chatstat/internal/parse"
	"github.com/Zuo-Peng/chatstat/internal/scan"
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Pruned, s.Errors)
}

// IndexAll archives every export below root. Unchanged files are skipped,
// files that fail to parse are counted and logged, and chats whose file
// is gone are pruned.
func IndexAll(db *DB, root string) (Stats, error) {
	var stats Stats

	files, err := scan.ScanExports(root)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	// track which files we see, for pruning
	seenKeys := make(map[string]struct{})

	for _, fi := range files {
		key := parse.ChatKey(fi.Path, root)
		seenKeys[key] = struct{}{}

		needs, err := needsUpdate(db, key, fi.Mtime, fi.Size)
		if err != nil {
			stats.Errors++
			log.WithError(err).WithField("chat", key).Warn("check chat")
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}

		result, err := parse.ParseFile(fi.Path, root)
		if err != nil {
			stats.Errors++
			log.WithError(err).WithField("file", fi.Path).Warn("parse export")
			continue
		}

		if err := IndexChat(db, result); err != nil {
			stats.Errors++
			log.WithError(err).WithField("file", fi.Path).Warn("index export")
			continue
		}
		stats.Updated++
	}

	pruned, err := pruneChats(db, seenKeys)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

func needsUpdate(db *DB, chatKey string, mtime, size int64) (bool, error) {
	info, err := db.GetChatInfo(chatKey)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new chat
	}
	return info.Mtime != mtime || info.Size != size, nil
}

// IndexChat replaces the archived copy of a single parsed export.
func IndexChat(db *DB, result *parse.ParseResult) error {
	// delete old data first
	if err := db.DeleteChat(result.Meta.ChatKey); err != nil {
		return err
	}

	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var firstAt, lastAt string
	if len(result.Messages) > 0 {
		firstAt = result.Meta.FirstAt.Format(tsLayout)
		lastAt = result.Meta.LastAt.Format(tsLayout)
	}

	_, err = tx.Exec(
		`INSERT INTO chats (chat_key, name, file_path, first_at, last_at, message_count, mtime, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.Meta.ChatKey,
		result.Meta.Name,
		result.Meta.FilePath,
		firstAt,
		lastAt,
		len(result.Messages),
		result.Meta.Mtime.Unix(),
		result.Meta.Size,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (chat_key, msg_id, ts, sender, kind, text, line_number)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range result.Messages {
		_, err := stmt.Exec(
			result.Meta.ChatKey,
			i,
			m.Time.Format(tsLayout),
			m.Sender,
			m.Kind.String(),
			m.Text,
			m.Line,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func pruneChats(db *DB, seenKeys map[string]struct{}) (int, error) {
	allKeys, err := db.AllChatKeys()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key := range allKeys {
		if _, ok := seenKeys[key]; !ok {
			if err := db.DeleteChat(key); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
