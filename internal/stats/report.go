package stats

import (
	"cmp"
	"slices"
	"time"

	"github.com/Zuo-Peng/chatstat/internal/parse"
)

// ReportKind selects how a report is laid out.
type ReportKind string

const (
	KindTotal   ReportKind = "total"
	KindRanking ReportKind = "ranking"
	KindListing ReportKind = "listing"
	KindMessage ReportKind = "message"
)

type Entry struct {
	Rank    int     `json:"rank" yaml:"rank"`
	Label   string  `json:"label" yaml:"label"`
	Count   int     `json:"count,omitempty" yaml:"count,omitempty"`
	Percent float64 `json:"percent,omitempty" yaml:"percent,omitempty"`
	When    string  `json:"when,omitempty" yaml:"when,omitempty"`
}

type MessageRef struct {
	When   string `json:"when" yaml:"when"`
	Sender string `json:"sender" yaml:"sender"`
	Text   string `json:"text" yaml:"text"`
	Length int    `json:"length" yaml:"length"`
}

// Report is the result of one statistic. Which fields are set depends on
// Kind: totals use Value/Unit, rankings and listings use Entries with an
// optional Total footer, message reports use Message.
type Report struct {
	Key         string      `json:"key" yaml:"key"`
	Title       string      `json:"title" yaml:"title"`
	Kind        ReportKind  `json:"kind" yaml:"kind"`
	Value       int         `json:"value,omitempty" yaml:"value,omitempty"`
	Unit        string      `json:"unit,omitempty" yaml:"unit,omitempty"`
	Percent     float64     `json:"percent,omitempty" yaml:"percent,omitempty"`
	HasPercent  bool        `json:"-" yaml:"-"`
	Entries     []Entry     `json:"entries,omitempty" yaml:"entries,omitempty"`
	Percentages bool        `json:"-" yaml:"-"`
	Total       int         `json:"total,omitempty" yaml:"total,omitempty"`
	TotalUnit   string      `json:"total_unit,omitempty" yaml:"total_unit,omitempty"`
	Message     *MessageRef `json:"message,omitempty" yaml:"message,omitempty"`
}

// counter counts keys and remembers the order they were first seen in,
// so equal counts rank in order of appearance.
type counter[K comparable] struct {
	counts map[K]int
	order  []K
}

func newCounter[K comparable]() *counter[K] {
	return &counter[K]{counts: make(map[K]int)}
}

func (c *counter[K]) add(k K) {
	if _, ok := c.counts[k]; !ok {
		c.order = append(c.order, k)
	}
	c.counts[k]++
}

func (c *counter[K]) ranked() []K {
	keys := slices.Clone(c.order)
	slices.SortStableFunc(keys, func(a, b K) int {
		return cmp.Compare(c.counts[b], c.counts[a])
	})
	return keys
}

// entries converts the counter into ranked entries. With total > 0 every
// entry also gets its share of total in percent.
func (c *counter[K]) entries(label func(K) string, total int) []Entry {
	keys := c.ranked()
	out := make([]Entry, 0, len(keys))
	for i, k := range keys {
		e := Entry{Rank: i + 1, Label: label(k), Count: c.counts[k]}
		if total > 0 {
			e.Percent = percent(e.Count, total)
		}
		out = append(out, e)
	}
	return out
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// dayIndex returns the number of calendar days since the Unix epoch.
func dayIndex(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// span returns the earliest and latest message times.
func span(msgs []parse.Message) (first, last time.Time, err error) {
	if len(msgs) == 0 {
		return first, last, parse.ErrEmptyInput
	}
	first, last = msgs[0].Time, msgs[0].Time
	for _, m := range msgs[1:] {
		if m.Time.Before(first) {
			first = m.Time
		}
		if m.Time.After(last) {
			last = m.Time
		}
	}
	return first, last, nil
}

func identity(s string) string { return s }
