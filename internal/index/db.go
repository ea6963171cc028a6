package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Zuo-Peng/chatstat/internal/parse"
)

// tsLayout keeps stored timestamps sortable as text.
const tsLayout = "2006-01-02T15:04"

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS chats (
    chat_key      TEXT PRIMARY KEY,
    name          TEXT NOT NULL DEFAULT '',
    file_path     TEXT NOT NULL,
    first_at      TEXT NOT NULL DEFAULT '',
    last_at       TEXT NOT NULL DEFAULT '',
    message_count INTEGER NOT NULL DEFAULT 0,
    mtime         INTEGER NOT NULL DEFAULT 0,
    size          INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
    chat_key    TEXT NOT NULL,
    msg_id      INTEGER NOT NULL,
    ts          TEXT NOT NULL,
    sender      TEXT NOT NULL,
    kind        TEXT NOT NULL DEFAULT 'text',
    text        TEXT NOT NULL,
    line_number INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (chat_key, msg_id)
);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    text,
    content=messages,
    content_rowid=rowid,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, text) VALUES (new.rowid, new.text);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, text) VALUES('delete', old.rowid, old.text);
END;

CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, text) VALUES('delete', old.rowid, old.text);
    INSERT INTO messages_fts(rowid, text) VALUES (new.rowid, new.text);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrateSchemaVersion(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

// schemaVersion should be bumped whenever message parsing changes so
// every export is parsed again.
const schemaVersion = "1"

func (d *DB) migrateSchemaVersion() error {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err == nil && ver == schemaVersion {
		return nil
	}
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	// reset mtime/size so the next index run re-parses everything
	if _, err := d.db.Exec("UPDATE chats SET mtime = 0, size = 0"); err != nil {
		return err
	}
	_, err = d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type ChatInfo struct {
	Mtime int64
	Size  int64
}

func (d *DB) GetChatInfo(chatKey string) (*ChatInfo, error) {
	var info ChatInfo
	err := d.db.QueryRow(
		"SELECT mtime, size FROM chats WHERE chat_key = ?",
		chatKey,
	).Scan(&info.Mtime, &info.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *DB) AllChatKeys() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT chat_key FROM chats")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

func (d *DB) DeleteChat(chatKey string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE chat_key = ?", chatKey); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM chats WHERE chat_key = ?", chatKey); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) ChatCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM chats").Scan(&n)
	return n, err
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

func (d *DB) FTSCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages_fts").Scan(&n)
	return n, err
}

type ChatRow struct {
	ChatKey      string
	Name         string
	FilePath     string
	FirstAt      string
	LastAt       string
	MessageCount int
}

func (d *DB) GetChatByKey(chatKey string) (*ChatRow, error) {
	var c ChatRow
	err := d.db.QueryRow(
		"SELECT chat_key, name, file_path, first_at, last_at, message_count FROM chats WHERE chat_key = ?",
		chatKey,
	).Scan(&c.ChatKey, &c.Name, &c.FilePath, &c.FirstAt, &c.LastAt, &c.MessageCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChats returns all archived chats, most recently active first.
func (d *DB) ListChats() ([]ChatRow, error) {
	rows, err := d.db.Query(
		"SELECT chat_key, name, file_path, first_at, last_at, message_count FROM chats ORDER BY last_at DESC, chat_key",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []ChatRow
	for rows.Next() {
		var c ChatRow
		if err := rows.Scan(&c.ChatKey, &c.Name, &c.FilePath, &c.FirstAt, &c.LastAt, &c.MessageCount); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

type MessageRow struct {
	ChatKey    string
	MsgID      int
	Ts         string
	Sender     string
	Kind       string
	Text       string
	LineNumber int
}

const messageColumns = "chat_key, msg_id, ts, sender, kind, text, line_number"

func scanMessageRows(rows *sql.Rows, hitMsgID int) ([]MessageRow, int, error) {
	var out []MessageRow
	hitIdx := -1
	for rows.Next() {
		var m MessageRow
		if err := rows.Scan(&m.ChatKey, &m.MsgID, &m.Ts, &m.Sender, &m.Kind, &m.Text, &m.LineNumber); err != nil {
			return nil, -1, err
		}
		if m.MsgID == hitMsgID {
			hitIdx = len(out)
		}
		out = append(out, m)
	}
	return out, hitIdx, rows.Err()
}

func (d *DB) GetMessages(chatKey string) ([]MessageRow, error) {
	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE chat_key = ? ORDER BY msg_id",
		chatKey,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs, _, err := scanMessageRows(rows, -1)
	return msgs, err
}

func (d *DB) GetMessage(chatKey string, msgID int) (*MessageRow, error) {
	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE chat_key = ? AND msg_id = ?",
		chatKey, msgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs, _, err := scanMessageRows(rows, -1)
	if err != nil || len(msgs) == 0 {
		return nil, err
	}
	return &msgs[0], nil
}

// GetMessagesWindow returns up to context messages on either side of the
// hit. Message ids are dense positions, so the window is a plain id range.
// hitIdx is the hit's index in the returned slice, -1 if it has none.
func (d *DB) GetMessagesWindow(chatKey string, hitMsgID, context int) (msgs []MessageRow, hitIdx int, startPos int, totalCount int, err error) {
	err = d.db.QueryRow(
		"SELECT COUNT(*) FROM messages WHERE chat_key = ?", chatKey,
	).Scan(&totalCount)
	if err != nil {
		return nil, -1, 0, 0, err
	}

	startPos = 0
	endPos := totalCount
	if hitMsgID >= 0 && hitMsgID < totalCount {
		startPos = max(hitMsgID-context, 0)
		endPos = min(hitMsgID+context+1, totalCount)
	}

	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE chat_key = ? AND msg_id >= ? AND msg_id < ? ORDER BY msg_id",
		chatKey, startPos, endPos,
	)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	defer rows.Close()

	msgs, hitIdx, err = scanMessageRows(rows, hitMsgID)
	return msgs, hitIdx, startPos, totalCount, err
}

// LoadMessages rebuilds the parsed messages of an archived chat so reports
// can run without the export file.
func (d *DB) LoadMessages(chatKey string) ([]parse.Message, error) {
	rows, err := d.GetMessages(chatKey)
	if err != nil {
		return nil, err
	}
	msgs := make([]parse.Message, 0, len(rows))
	for _, r := range rows {
		ts, err := time.ParseInLocation(tsLayout, r.Ts, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", r.MsgID, err)
		}
		kind, ok := parse.ParseKind(r.Kind)
		if !ok {
			return nil, fmt.Errorf("message %d: unknown kind %q", r.MsgID, r.Kind)
		}
		msgs = append(msgs, parse.Message{
			Time:   ts,
			Sender: r.Sender,
			Text:   r.Text,
			Kind:   kind,
			Line:   r.LineNumber,
		})
	}
	return msgs, nil
}
