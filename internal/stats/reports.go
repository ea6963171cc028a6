package stats

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Zuo-Peng/chatstat/internal/parse"
)

var (
	wordRe     = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	numberRe   = regexp.MustCompile(`[1-9][0-9]*`)
	mentionRe  = regexp.MustCompile(`@[0-9]{5,}`)
	hashtagRe  = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
	securityRe = regexp.MustCompile(`(?s)Die Sicherheitsnummer von (.*) hat sich geändert`)
)

// TotalDays counts the calendar days between the first and the last message.
func TotalDays(msgs []parse.Message) (*Report, error) {
	first, last, err := span(msgs)
	if err != nil {
		return nil, err
	}
	return &Report{
		Key:   "total-days",
		Title: "Total days",
		Kind:  KindTotal,
		Value: int(dayIndex(last) - dayIndex(first)),
		Unit:  "total days",
	}, nil
}

// DaysWithoutMessages counts the days of the chat's span, first and last
// day included, on which no message other than a system notice was sent.
func DaysWithoutMessages(msgs []parse.Message) (*Report, error) {
	first, last, err := span(msgs)
	if err != nil {
		return nil, err
	}
	days := make(map[int64]struct{})
	for _, m := range msgs {
		if !m.IsSystem() {
			days[dayIndex(m.Time)] = struct{}{}
		}
	}
	total := int(dayIndex(last)-dayIndex(first)) + 1
	without := total - len(days)
	if without < 0 {
		without = 0
	}
	return &Report{
		Key:        "days-without-messages",
		Title:      "Days without messages",
		Kind:       KindTotal,
		Value:      without,
		Unit:       fmt.Sprintf("of %d days without messages", total),
		Percent:    percent(without, total),
		HasPercent: true,
	}, nil
}

func TotalMessages(msgs []parse.Message) *Report {
	n := 0
	for _, m := range msgs {
		if !m.IsSystem() {
			n++
		}
	}
	return &Report{Key: "total-messages", Title: "Total messages", Kind: KindTotal, Value: n, Unit: "total messages"}
}

// TotalWords counts words in plain text messages only.
func TotalWords(msgs []parse.Message) *Report {
	n := 0
	for _, m := range msgs {
		if !m.IsSpecial() {
			n += len(wordRe.FindAllStringIndex(m.Text, -1))
		}
	}
	return &Report{Key: "total-words", Title: "Total words", Kind: KindTotal, Value: n, Unit: "total words"}
}

// TotalLetters counts characters in plain text messages only.
func TotalLetters(msgs []parse.Message) *Report {
	n := 0
	for _, m := range msgs {
		if !m.IsSpecial() {
			n += utf8.RuneCountInString(m.Text)
		}
	}
	return &Report{Key: "total-letters", Title: "Total letters", Kind: KindTotal, Value: n, Unit: "total letters"}
}

func UserRanking(msgs []parse.Message) *Report {
	c := newCounter[string]()
	for _, m := range msgs {
		if !m.IsSystem() {
			c.add(m.Sender)
		}
	}
	return &Report{
		Key:     "user-ranking",
		Title:   "User ranking (most total messages)",
		Kind:    KindRanking,
		Entries: c.entries(identity, 0),
	}
}

// WordRanking ranks senders by the number of messages containing phrase,
// ignoring case. Media, deleted, contact and location messages are
// searched too, so the placeholders themselves can be ranked.
func WordRanking(msgs []parse.Message, phrase string) *Report {
	return phraseRanking(msgs, phrase, "word-ranking", fmt.Sprintf("Ranking for '%s'", phrase))
}

func MediasRanking(msgs []parse.Message) *Report {
	return phraseRanking(msgs, parse.MediaOmitted, "medias-ranking", "Media ranking")
}

func DeletedMessagesRanking(msgs []parse.Message) *Report {
	return phraseRanking(msgs, parse.MessageDeleted, "deleted-messages-ranking", "Deleted messages ranking")
}

func phraseRanking(msgs []parse.Message, phrase, key, title string) *Report {
	needle := strings.ToLower(phrase)
	c := newCounter[string]()
	total := 0
	for _, m := range msgs {
		if m.IsSystem() {
			continue
		}
		if strings.Contains(strings.ToLower(m.Text), needle) {
			c.add(m.Sender)
			total++
		}
	}
	return &Report{
		Key:       key,
		Title:     title,
		Kind:      KindRanking,
		Entries:   c.entries(identity, 0),
		Total:     total,
		TotalUnit: fmt.Sprintf("messages with '%s'", phrase),
	}
}

func MessagesByTime(msgs []parse.Message) *Report {
	c := newCounter[int]()
	total := 0
	for _, m := range msgs {
		if !m.IsSystem() {
			c.add(m.Time.Hour())
			total++
		}
	}
	label := func(h int) string {
		return fmt.Sprintf("%02d:00 - %02d:00", h, (h+1)%24)
	}
	return &Report{
		Key:         "messages-by-time",
		Title:       "Messages by time",
		Kind:        KindRanking,
		Entries:     c.entries(label, total),
		Percentages: true,
	}
}

func MessagesByWeekday(msgs []parse.Message) *Report {
	c := newCounter[time.Weekday]()
	total := 0
	for _, m := range msgs {
		if !m.IsSystem() {
			c.add(m.Time.Weekday())
			total++
		}
	}
	return &Report{
		Key:         "messages-by-weekday",
		Title:       "Messages by weekday",
		Kind:        KindRanking,
		Entries:     c.entries(time.Weekday.String, total),
		Percentages: true,
	}
}

// LetterCount ranks characters of plain text messages, case-insensitively.
func LetterCount(msgs []parse.Message) *Report {
	lower := cases.Lower(language.Und)
	c := newCounter[string]()
	for _, m := range msgs {
		if m.IsSpecial() {
			continue
		}
		for _, r := range m.Text {
			c.add(lower.String(string(r)))
		}
	}
	return &Report{
		Key:     "letter-count",
		Title:   "Letter count",
		Kind:    KindRanking,
		Entries: c.entries(quoteLetter, 0),
	}
}

func quoteLetter(s string) string {
	switch s {
	case " ":
		return "' '"
	case "\n":
		return `'\n'`
	case "\t":
		return `'\t'`
	}
	return s
}

// WordCount ranks words of plain text messages, case-insensitively.
func WordCount(msgs []parse.Message) *Report {
	lower := cases.Lower(language.Und)
	c := newCounter[string]()
	for _, m := range msgs {
		if m.IsSpecial() {
			continue
		}
		for _, w := range wordRe.FindAllString(m.Text, -1) {
			c.add(lower.String(w))
		}
	}
	return &Report{
		Key:     "word-count",
		Title:   "Word count",
		Kind:    KindRanking,
		Entries: c.entries(identity, 0),
	}
}

// SecurityNumberRanking ranks users by how often their security number
// changed, i.e. how often they switched phones.
func SecurityNumberRanking(msgs []parse.Message) *Report {
	c := newCounter[string]()
	for _, m := range msgs {
		if !m.IsSystem() {
			continue
		}
		if sm := securityRe.FindStringSubmatch(m.Text); sm != nil {
			c.add(sm[1])
		}
	}
	return &Report{
		Key:     "securitynumber-ranking",
		Title:   "Security number ranking",
		Kind:    KindRanking,
		Entries: c.entries(identity, 0),
	}
}

// SystemEvents lists group notices such as members joining or leaving
// and title changes.
func SystemEvents(msgs []parse.Message) *Report {
	var entries []Entry
	for _, m := range msgs {
		if m.IsSystem() {
			entries = append(entries, Entry{Rank: len(entries) + 1, Label: m.Text, When: m.TimeString()})
		}
	}
	return &Report{
		Key:       "system-events",
		Title:     "System events",
		Kind:      KindListing,
		Entries:   entries,
		Total:     len(entries),
		TotalUnit: "system events",
	}
}

// FirstDigitDistribution ranks the leading digit of every number written
// in a message.
func FirstDigitDistribution(msgs []parse.Message) *Report {
	c := newCounter[byte]()
	total := 0
	for _, m := range msgs {
		if m.IsSystem() {
			continue
		}
		for _, n := range numberRe.FindAllString(m.Text, -1) {
			c.add(n[0])
			total++
		}
	}
	label := func(d byte) string { return "digit " + string(d) }
	return &Report{
		Key:         "first-digit-distribution",
		Title:       "First digit distribution",
		Kind:        KindRanking,
		Entries:     c.entries(label, total),
		Percentages: true,
		Total:       total,
		TotalUnit:   "numbers",
	}
}

func DayRanking(msgs []parse.Message) *Report {
	c := newCounter[string]()
	for _, m := range msgs {
		if !m.IsSystem() {
			c.add(m.Day())
		}
	}
	return &Report{
		Key:     "day-ranking",
		Title:   "Day ranking",
		Kind:    KindRanking,
		Entries: c.entries(identity, 0),
	}
}

// MostMentions ranks @-mentions of phone numbers in plain text messages.
func MostMentions(msgs []parse.Message) *Report {
	c := newCounter[string]()
	total := 0
	for _, m := range msgs {
		if m.IsSpecial() {
			continue
		}
		for _, ref := range mentionRe.FindAllString(m.Text, -1) {
			c.add(ref)
			total++
		}
	}
	return &Report{
		Key:       "most-mentions",
		Title:     "Most @-mentions",
		Kind:      KindRanking,
		Entries:   c.entries(identity, 0),
		Total:     total,
		TotalUnit: "@-mentions",
	}
}

func HashtagRanking(msgs []parse.Message) *Report {
	c := newCounter[string]()
	total := 0
	for _, m := range msgs {
		if m.IsSpecial() {
			continue
		}
		for _, sm := range hashtagRe.FindAllStringSubmatch(m.Text, -1) {
			c.add(sm[1])
			total++
		}
	}
	label := func(tag string) string { return "#" + tag }
	return &Report{
		Key:       "hashtag-ranking",
		Title:     "Most hashtags",
		Kind:      KindRanking,
		Entries:   c.entries(label, 0),
		Total:     total,
		TotalUnit: "hashtags",
	}
}

// LongestMessage returns the longest plain text message. The earliest
// one wins a tie.
func LongestMessage(msgs []parse.Message) *Report {
	r := &Report{Key: "longest-message", Title: "Longest message", Kind: KindMessage}
	best := 0
	for _, m := range msgs {
		if m.IsSpecial() {
			continue
		}
		if n := utf8.RuneCountInString(m.Text); n > best {
			best = n
			r.Message = &MessageRef{When: m.TimeString(), Sender: m.Sender, Text: m.Text, Length: n}
		}
	}
	return r
}
