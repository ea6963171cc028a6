package index

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Zuo-Peng/chatstat/internal/parse"
)

const aliceExport = `01.01.20, 10:00 - Alice: Hallo zusammen
wie geht es euch?
01.01.20, 10:05 - Bob: <Medien weggelassen>
01.01.20, 10:06 - Bob hat Carol hinzugefügt
02.01.20, 08:00 - Carol: Pizza heute?
02.01.20, 08:01 - Alice: Gerne, Pizza klingt gut
`

const bobExport = `03.02.21, 19:00 - Bob: Kino?
03.02.21, 19:02 - Dave: Ja
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "db", "chatstat.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestIndexAll(t *testing.T) {
	db := openTestDB(t)
	root := t.TempDir()
	alicePath := filepath.Join(root, "WhatsApp Chat mit Alice.txt")
	writeFile(t, alicePath, aliceExport)
	writeFile(t, filepath.Join(root, "kino", "WhatsApp Chat mit Bob.txt"), bobExport)
	writeFile(t, filepath.Join(root, "broken.txt"), "no header here\n")

	stats, err := IndexAll(db, root)
	if err != nil {
		t.Fatalf("IndexAll() error = %v", err)
	}
	if stats.Scanned != 3 || stats.Updated != 2 || stats.Errors != 1 {
		t.Errorf("first run stats = %s", stats)
	}

	chats, err := db.ChatCount()
	if err != nil || chats != 2 {
		t.Errorf("ChatCount() = %d, %v; want 2", chats, err)
	}
	msgs, err := db.MessageCount()
	if err != nil || msgs != 7 {
		t.Errorf("MessageCount() = %d, %v; want 7", msgs, err)
	}
	fts, err := db.FTSCount()
	if err != nil || fts != msgs {
		t.Errorf("FTSCount() = %d, %v; want %d", fts, err, msgs)
	}

	chat, err := db.GetChatByKey("WhatsApp Chat mit Alice")
	if err != nil || chat == nil {
		t.Fatalf("GetChatByKey() = %v, %v", chat, err)
	}
	if chat.Name != "Alice" || chat.MessageCount != 5 || chat.FirstAt != "2020-01-01T10:00" || chat.LastAt != "2020-01-02T08:01" {
		t.Errorf("chat = %+v", chat)
	}

	stats, err = IndexAll(db, root)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Skipped != 2 || stats.Updated != 0 {
		t.Errorf("second run stats = %s", stats)
	}

	if err := os.Remove(alicePath); err != nil {
		t.Fatal(err)
	}
	stats, err = IndexAll(db, root)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Pruned != 1 {
		t.Errorf("third run stats = %s", stats)
	}
	if c, _ := db.GetChatByKey("WhatsApp Chat mit Alice"); c != nil {
		t.Errorf("pruned chat still present: %+v", c)
	}
	if c, _ := db.GetChatByKey("kino/WhatsApp Chat mit Bob"); c == nil {
		t.Error("kino chat missing")
	}
}

func TestLoadMessagesRoundTrip(t *testing.T) {
	db := openTestDB(t)
	root := t.TempDir()
	path := filepath.Join(root, "WhatsApp Chat mit Alice.txt")
	writeFile(t, path, aliceExport)

	result, err := parse.ParseFile(path, root)
	if err != nil {
		t.Fatal(err)
	}
	if err := IndexChat(db, result); err != nil {
		t.Fatalf("IndexChat() error = %v", err)
	}

	got, err := db.LoadMessages(result.Meta.ChatKey)
	if err != nil {
		t.Fatalf("LoadMessages() error = %v", err)
	}
	if !reflect.DeepEqual(got, result.Messages) {
		t.Errorf("LoadMessages() =\n%v\nwant\n%v", got, result.Messages)
	}

	// indexing again replaces rather than duplicates
	if err := IndexChat(db, result); err != nil {
		t.Fatal(err)
	}
	if n, _ := db.MessageCount(); n != len(result.Messages) {
		t.Errorf("MessageCount() after re-index = %d, want %d", n, len(result.Messages))
	}
}

func TestGetMessagesWindow(t *testing.T) {
	db := openTestDB(t)
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	writeFile(t, path, aliceExport)
	result, err := parse.ParseFile(path, root)
	if err != nil {
		t.Fatal(err)
	}
	if err := IndexChat(db, result); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		hit       int
		context   int
		wantIDs   []int
		wantHit   int
		wantStart int
	}{
		{name: "middle", hit: 2, context: 1, wantIDs: []int{1, 2, 3}, wantHit: 1, wantStart: 1},
		{name: "start", hit: 0, context: 2, wantIDs: []int{0, 1, 2}, wantHit: 0, wantStart: 0},
		{name: "end", hit: 4, context: 1, wantIDs: []int{3, 4}, wantHit: 1, wantStart: 3},
		{name: "no hit", hit: -1, context: 1, wantIDs: []int{0, 1, 2, 3, 4}, wantHit: -1, wantStart: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, hitIdx, start, total, err := db.GetMessagesWindow("a", tt.hit, tt.context)
			if err != nil {
				t.Fatalf("GetMessagesWindow() error = %v", err)
			}
			var ids []int
			for _, m := range msgs {
				ids = append(ids, m.MsgID)
			}
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
			}
			if hitIdx != tt.wantHit || start != tt.wantStart || total != 5 {
				t.Errorf("hitIdx=%d start=%d total=%d", hitIdx, start, total)
			}
		})
	}

	m, err := db.GetMessage("a", 3)
	if err != nil || m == nil || m.Sender != "Carol" || m.LineNumber != 5 {
		t.Errorf("GetMessage() = %+v, %v", m, err)
	}
	if m, err := db.GetMessage("a", 99); m != nil || err != nil {
		t.Errorf("GetMessage(99) = %+v, %v", m, err)
	}
}

func TestListChats(t *testing.T) {
	db := openTestDB(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "WhatsApp Chat mit Alice.txt"), aliceExport)
	writeFile(t, filepath.Join(root, "WhatsApp Chat mit Bob.txt"), bobExport)
	if _, err := IndexAll(db, root); err != nil {
		t.Fatal(err)
	}
	chats, err := db.ListChats()
	if err != nil {
		t.Fatal(err)
	}
	if len(chats) != 2 || chats[0].Name != "Bob" {
		t.Errorf("ListChats() = %+v", chats)
	}
}
