package render

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/chatstat/internal/index"
	"github.com/Zuo-Peng/chatstat/internal/parse"
)

const (
	colorReset   = "\033[0m"
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // keyword highlights
)

// senderColors is cycled through so each sender keeps one colour.
var senderColors = []string{
	"\033[1;34m", // bold blue
	"\033[1;32m", // bold green
	"\033[1;35m", // bold magenta
	"\033[1;33m", // bold yellow
	"\033[1;36m", // bold cyan
}

type Options struct {
	HitMsgID int
	Context  int    // messages before/after hit to show
	Width    int    // wrap width (0 = no wrap)
	Query    string // search query for keyword highlighting
	NoColor  bool
}

// fts5Operators are FTS5 operators that should not be highlighted as keywords.
var fts5Operators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	var terms []string
	for _, t := range strings.Fields(query) {
		t = strings.Trim(t, `"*()`)
		if t != "" && !fts5Operators[strings.ToUpper(t)] {
			terms = append(terms, t)
		}
	}
	for _, term := range terms {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			end := pos + len(term)
			if end > len(text) {
				break
			}
			replacement := colorBoldRed + text[pos:end] + colorReset
			text = text[:pos] + replacement + text[end:]
			i = pos + len(replacement)
		}
	}
	return text
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	for i := 0; i < len(line); {
		if line[i] == '\033' && i+1 < len(line) && line[i+1] == '[' {
			j := strings.IndexByte(line[i:], 'm')
			if j < 0 {
				j = len(line) - i - 1
			}
			cur.WriteString(line[i : i+j+1])
			i += j + 1
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)
		if visW+rw > maxWidth && visW > 0 {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}
		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 || len(result) == 0 {
		result = append(result, cur.String())
	}
	return result
}

func senderColor(sender string) string {
	h := fnv.New32a()
	h.Write([]byte(sender))
	return senderColors[h.Sum32()%uint32(len(senderColors))]
}

// stripANSI removes colour codes, for plain output.
func stripANSI(s string) string {
	if !strings.Contains(s, "\033[") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := strings.IndexByte(s[i:], 'm')
			if j < 0 {
				break
			}
			i += j + 1
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// RenderConversation renders the messages around a hit and returns the
// content, the 0-based line of the hit header (-1 if no hit), and any error.
func RenderConversation(db *index.DB, chatKey string, opts Options) (string, int, error) {
	if opts.Context == 0 {
		opts.Context = 10
	}
	if opts.Context < 0 {
		opts.Context = 1000000 // no limit
	}

	chat, err := db.GetChatByKey(chatKey)
	if err != nil {
		return "", -1, fmt.Errorf("get chat: %w", err)
	}
	if chat == nil {
		return "", -1, fmt.Errorf("chat not found: %s", chatKey)
	}

	msgs, hitIdx, startPos, totalCount, err := db.GetMessagesWindow(chatKey, opts.HitMsgID, opts.Context)
	if err != nil {
		return "", -1, fmt.Errorf("get messages: %w", err)
	}
	if totalCount == 0 {
		return "(empty chat)", -1, nil
	}
	skipAfter := totalCount - startPos - len(msgs)

	var b strings.Builder
	hitLine := -1
	lineCount := 0
	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			if opts.NoColor {
				wl = stripANSI(wl)
			}
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	writeLine(fmt.Sprintf("%s--- %s (%s) %s .. %s ---%s", colorDim, chat.Name, chatKey, chat.FirstAt, chat.LastAt, colorReset))
	if startPos > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages before) ...%s", colorDim, startPos, colorReset))
	}

	for i, m := range msgs {
		if i == hitIdx {
			hitLine = lineCount
		}

		if m.Kind == parse.KindSystem.String() {
			line := fmt.Sprintf("%s%s * %s%s", colorDim, m.Ts, m.Text, colorReset)
			if i == hitIdx {
				line = colorHit + ">> " + colorReset + line
			}
			writeLine(line)
			continue
		}

		label := m.Sender
		if m.Kind != parse.KindText.String() {
			label += " [" + m.Kind + "]"
		}
		if i == hitIdx {
			writeLine(fmt.Sprintf("%s>> %s > %s <<%s", colorHit, label, m.Ts, colorReset))
		} else {
			writeLine(fmt.Sprintf("%s%s%s %s%s%s", senderColor(m.Sender), label, colorReset, colorDim, m.Ts, colorReset))
		}

		text := indentLines(highlightKeywords(m.Text, opts.Query), "  ")
		for _, tl := range strings.Split(text, "\n") {
			writeLine(tl)
		}
	}

	if skipAfter > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages after) ...%s", colorDim, skipAfter, colorReset))
	}

	return b.String(), hitLine, nil
}
