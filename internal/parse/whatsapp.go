package parse

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const maxLineSize = 10 * 1024 * 1024 // 10MB

// Placeholder bodies written by the German Android export.
const (
	MediaOmitted   = "<Medien weggelassen>"
	MessageDeleted = "Diese Nachricht wurde gelöscht"
	ContactSuffix  = ".vcf (Datei angehängt)"
	LiveLocation   = "Live-Standort wird geteilt"
	LocationPrefix = "Standort: https://maps.google.com/"
)

// exportPrefix is stripped from file names to get the chat name.
const exportPrefix = "WhatsApp Chat mit "

// headerRe matches "DD.MM.YY, HH:MM - sender[: body]". The sender is
// non-greedy so it ends at the first ": ".
var headerRe = regexp.MustCompile(`^([0-3][0-9]\.[0-1][0-9]\.[0-9][0-9], [0-2][0-9]:[0-5][0-9]) - (.*?)(: .*)?$`)

type parser struct {
	msgs    []Message
	lineNum int
}

func (p *parser) feed(raw string) error {
	p.lineNum++
	line := strings.TrimSuffix(raw, "\r")

	m := headerRe.FindStringSubmatchIndex(line)
	if m == nil {
		if len(p.msgs) == 0 {
			return &LineError{Line: p.lineNum, Raw: line, Err: ErrMalformedInput}
		}
		last := &p.msgs[len(p.msgs)-1]
		last.Text += "\n" + line
		return nil
	}

	stamp := line[m[2]:m[3]]
	ts, err := time.ParseInLocation(TimeLayout, stamp, time.UTC)
	if err != nil {
		return &LineError{Line: p.lineNum, Raw: line, Err: fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)}
	}
	who := line[m[4]:m[5]]

	// no ": body" group, so this is a group notice
	if m[6] < 0 {
		p.msgs = append(p.msgs, Message{
			Time:   ts,
			Sender: SystemSender,
			Text:   who,
			Kind:   KindSystem,
			Line:   p.lineNum,
		})
		return nil
	}

	body := line[m[6]+2 : m[7]]
	p.msgs = append(p.msgs, Message{
		Time:   ts,
		Sender: who,
		Text:   body,
		Kind:   Classify(body),
		Line:   p.lineNum,
	})
	return nil
}

// Classify returns the placeholder kind of a message body. Checks run in
// a fixed order and the first match wins.
func Classify(body string) Kind {
	switch {
	case body == MediaOmitted:
		return KindMedia
	case body == MessageDeleted:
		return KindDeleted
	case strings.HasSuffix(body, ContactSuffix):
		return KindContact
	case body == LiveLocation || strings.HasPrefix(body, LocationPrefix):
		return KindLocation
	default:
		return KindText
	}
}

// Parse converts export lines (without trailing newlines) into messages.
// Lines that don't start a message are appended to the previous one.
func Parse(lines []string) ([]Message, error) {
	var p parser
	for _, l := range lines {
		if err := p.feed(l); err != nil {
			return nil, err
		}
	}
	return p.msgs, nil
}

// ParseReader parses an export from r. A leading UTF-8 byte order mark is
// dropped.
func ParseReader(r io.Reader) ([]Message, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	scanner := bufio.NewScanner(transform.NewReader(r, dec))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var p parser
	for scanner.Scan() {
		if err := p.feed(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return p.msgs, nil
}

// ParseFile parses the export at filePath. The chat key is the path
// relative to root without its extension.
func ParseFile(filePath, root string) (*ParseResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	msgs, err := ParseReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	result := &ParseResult{
		Meta:     chatMeta(filePath, root),
		Messages: msgs,
	}
	result.Meta.Mtime = info.ModTime()
	result.Meta.Size = info.Size()
	if len(msgs) > 0 {
		result.Meta.FirstAt = msgs[0].Time
		result.Meta.LastAt = msgs[len(msgs)-1].Time
	}

	log.Debugf("parsed %s: %d messages", filePath, len(msgs))
	return result, nil
}

// ChatKey identifies an export by its path relative to root, without the
// extension. Files outside root are keyed by their base name.
func ChatKey(filePath, root string) string {
	rel, err := filepath.Rel(root, filePath)
	if err != nil || root == "" || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(filePath)
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

func chatMeta(filePath, root string) ChatMeta {
	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	return ChatMeta{
		ChatKey:  ChatKey(filePath, root),
		Name:     strings.TrimPrefix(name, exportPrefix),
		FilePath: filePath,
	}
}
