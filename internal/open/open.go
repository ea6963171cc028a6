package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Zuo-Peng/chatstat/internal/index"
)

// OpenChat opens the export file of an archived chat in $EDITOR, positioned
// at the header line of message hitMsgID (first line if hitMsgID < 0).
func OpenChat(db *index.DB, chatKey string, hitMsgID int) error {
	chat, err := db.GetChatByKey(chatKey)
	if err != nil {
		return fmt.Errorf("get chat: %w", err)
	}
	if chat == nil {
		return fmt.Errorf("chat not found: %s", chatKey)
	}

	if _, err := os.Stat(chat.FilePath); err != nil {
		return fmt.Errorf("file not found: %s", chat.FilePath)
	}

	lineNum := 1
	if hitMsgID >= 0 {
		m, err := db.GetMessage(chatKey, hitMsgID)
		if err != nil {
			log.WithError(err).WithField("chat", chatKey).Debug("lookup hit line")
		} else if m != nil && m.LineNumber > 0 {
			lineNum = m.LineNumber
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	args := editorArgs(editor, chat.FilePath, lineNum)
	log.WithField("cmd", strings.Join(args, " ")).Debug("open editor")
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// editorArgs builds the command line that opens filePath at lineNum for
// the editors that support jumping to a line.
func editorArgs(editor, filePath string, lineNum int) []string {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		fields = []string{"less"}
	}
	name := filepath.Base(fields[0])

	switch {
	case strings.Contains(name, "vim"), name == "vi", name == "nano", name == "less", name == "micro":
		return append(fields, "+"+strconv.Itoa(lineNum), filePath)
	case strings.Contains(name, "code"), name == "cursor":
		return append(fields, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case name == "subl", name == "hx", name == "helix":
		return append(fields, filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(name, "emacs"):
		return append(fields, "+"+strconv.Itoa(lineNum), filePath)
	}
	return append(fields, filePath)
}
