package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/chatstat/internal/index"
)

type Result struct {
	ChatKey  string
	MsgID    int
	Ts       string
	Sender   string
	Kind     string
	ChatName string
	Snippet  string
	Rank     float64
}

type Options struct {
	Query  string
	Chat   string // "" = all chats
	Sender string // "" = all senders
	Since  string // "" = no filter, e.g. "2024-01-01"
	Limit  int
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := strings.Index(lower, qLower)
	runes := []rune(text)
	if idx < 0 || len(lower) != len(text) {
		// no match, or lowering changed byte offsets: return head
		if len(runes) > contextChars*2 {
			return string(runes[:contextChars*2]) + "..."
		}
		return text
	}
	qLen := len([]rune(query))
	runePos := len([]rune(text[:idx]))
	start := max(runePos-contextChars, 0)
	end := min(runePos+qLen+contextChars, len(runes))
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+qLen]) + "<<<" +
		string(runes[runePos+qLen:end])
	return prefix + snippet + suffix
}

func Search(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	if strings.TrimSpace(opts.Query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if containsCJK(opts.Query) {
		return searchLike(db, opts)
	}
	return searchFTS(db, opts)
}

// filters builds the WHERE conditions shared by both search paths.
func filters(opts Options) ([]string, []any) {
	var conditions []string
	var args []any
	if opts.Chat != "" {
		conditions = append(conditions, "m.chat_key = ?")
		args = append(args, opts.Chat)
	}
	if opts.Sender != "" {
		conditions = append(conditions, "m.sender = ?")
		args = append(args, opts.Sender)
	}
	if opts.Since != "" {
		conditions = append(conditions, "m.ts >= ?")
		args = append(args, opts.Since)
	}
	return conditions, args
}

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"messages_fts MATCH ?"}
	args := []any{opts.Query}
	more, moreArgs := filters(opts)
	conditions = append(conditions, more...)
	args = append(args, moreArgs...)

	query := fmt.Sprintf(`
		SELECT
			m.chat_key,
			m.msg_id,
			m.ts,
			m.sender,
			m.kind,
			c.name,
			snippet(messages_fts, 0, '>>>', '<<<', '...', 16) AS snip,
			bm25(messages_fts) AS rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.rowid
		JOIN chats c ON m.chat_key = c.chat_key
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"m.text LIKE ?"}
	args := []any{"%" + opts.Query + "%"}
	more, moreArgs := filters(opts)
	conditions = append(conditions, more...)
	args = append(args, moreArgs...)

	query := fmt.Sprintf(`
		SELECT
			m.chat_key,
			m.msg_id,
			m.ts,
			m.sender,
			m.kind,
			c.name,
			m.text
		FROM messages m
		JOIN chats c ON m.chat_key = c.chat_key
		WHERE %s
		ORDER BY m.ts DESC
		LIMIT ?
	`, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var fullText string
		if err := rows.Scan(&r.ChatKey, &r.MsgID, &r.Ts, &r.Sender, &r.Kind, &r.ChatName, &fullText); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(fullText, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.ChatKey, &r.MsgID, &r.Ts, &r.Sender, &r.Kind,
			&r.ChatName, &r.Snippet, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListAll returns one result per archived chat, most recently active first.
// The result points at the chat's last message.
func ListAll(db *index.DB, opts Options) ([]Result, error) {
	var conditions []string
	var args []any
	if opts.Chat != "" {
		conditions = append(conditions, "c.chat_key = ?")
		args = append(args, opts.Chat)
	}
	if opts.Since != "" {
		conditions = append(conditions, "c.last_at >= ?")
		args = append(args, opts.Since)
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	limit := ""
	if opts.Limit > 0 {
		limit = "LIMIT ?"
		args = append(args, opts.Limit)
	}

	query := fmt.Sprintf(`
		SELECT c.chat_key, m.msg_id, c.last_at, m.sender, m.kind, c.name, m.text
		FROM chats c
		JOIN messages m ON m.chat_key = c.chat_key AND m.msg_id = c.message_count - 1
		%s
		ORDER BY c.last_at DESC, c.chat_key
		%s
	`, where, limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var text string
		if err := rows.Scan(&r.ChatKey, &r.MsgID, &r.Ts, &r.Sender, &r.Kind, &r.ChatName, &text); err != nil {
			return nil, err
		}
		r.Snippet = head(text, 60)
		results = append(results, r)
	}
	return results, rows.Err()
}

func head(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
