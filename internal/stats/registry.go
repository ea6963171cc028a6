package stats

import (
	"fmt"

	"github.com/Zuo-Peng/chatstat/internal/parse"
)

// Params carries the arguments some reports take.
type Params struct {
	Phrase string
}

// Definition describes a selectable report. Definitions run in the order
// they are listed in Definitions.
type Definition struct {
	Key         string
	Short       string
	Usage       string
	NeedsPhrase bool
	Run         func(msgs []parse.Message, p Params) (*Report, error)
}

func simple(f func([]parse.Message) *Report) func([]parse.Message, Params) (*Report, error) {
	return func(msgs []parse.Message, _ Params) (*Report, error) {
		return f(msgs), nil
	}
}

var Definitions = []Definition{
	{Key: "total-days", Short: "D", Usage: "print total number of days",
		Run: func(msgs []parse.Message, _ Params) (*Report, error) { return TotalDays(msgs) }},
	{Key: "days-without-messages", Short: "W", Usage: "print number of days without messages",
		Run: func(msgs []parse.Message, _ Params) (*Report, error) { return DaysWithoutMessages(msgs) }},
	{Key: "total-messages", Short: "M", Usage: "print how many messages there are in total", Run: simple(TotalMessages)},
	{Key: "total-words", Short: "w", Usage: "print how many words there are in total", Run: simple(TotalWords)},
	{Key: "total-letters", Short: "l", Usage: "print how many letters there are in total", Run: simple(TotalLetters)},
	{Key: "user-ranking", Short: "u", Usage: "print a ranking of users who sent the most messages", Run: simple(UserRanking)},
	{Key: "word-ranking", Short: "p", NeedsPhrase: true, Usage: "print a ranking of users who sent the most messages containing a phrase",
		Run: func(msgs []parse.Message, p Params) (*Report, error) { return WordRanking(msgs, p.Phrase), nil }},
	{Key: "medias-ranking", Short: "m", Usage: "print a ranking of users who sent the most media messages", Run: simple(MediasRanking)},
	{Key: "deleted-messages-ranking", Short: "d", Usage: "print a ranking of users who sent the most deleted messages", Run: simple(DeletedMessagesRanking)},
	{Key: "messages-by-time", Short: "t", Usage: "print how many messages were sent during each hour of the day", Run: simple(MessagesByTime)},
	{Key: "messages-by-weekday", Short: "k", Usage: "print how many messages were sent on each day of the week", Run: simple(MessagesByWeekday)},
	{Key: "letter-count", Short: "c", Usage: "print a ranking of how often each letter is used", Run: simple(LetterCount)},
	{Key: "word-count", Short: "C", Usage: "print a ranking of how often each word is used", Run: simple(WordCount)},
	{Key: "securitynumber-ranking", Short: "s", Usage: "print a ranking of users who changed their security number most often", Run: simple(SecurityNumberRanking)},
	{Key: "system-events", Short: "e", Usage: "print all system events", Run: simple(SystemEvents)},
	{Key: "first-digit-distribution", Short: "f", Usage: "print a ranking of which digit (1-9) is most often the first digit of a number", Run: simple(FirstDigitDistribution)},
	{Key: "day-ranking", Short: "r", Usage: "print a ranking of days on which the most messages were sent", Run: simple(DayRanking)},
	{Key: "most-mentions", Short: "a", Usage: "print a ranking of users who get @-mentioned most often", Run: simple(MostMentions)},
	{Key: "hashtag-ranking", Short: "H", Usage: "print a ranking of the most used hashtags", Run: simple(HashtagRanking)},
	{Key: "longest-message", Short: "L", Usage: "print the longest message", Run: simple(LongestMessage)},
}

func Lookup(key string) (Definition, bool) {
	for _, d := range Definitions {
		if d.Key == key {
			return d, true
		}
	}
	return Definition{}, false
}

// Run computes the selected reports in definition order. Unknown keys are
// an error; a phrase report without a phrase is skipped.
func Run(msgs []parse.Message, keys []string, p Params) ([]*Report, error) {
	selected := make(map[string]bool, len(keys))
	for _, k := range keys {
		if _, ok := Lookup(k); !ok {
			return nil, fmt.Errorf("unknown report: %s", k)
		}
		selected[k] = true
	}

	var reports []*Report
	for _, d := range Definitions {
		if !selected[d.Key] {
			continue
		}
		if d.NeedsPhrase && p.Phrase == "" {
			continue
		}
		r, err := d.Run(msgs, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Key, err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// AllKeys returns every report key in definition order.
func AllKeys() []string {
	keys := make([]string, len(Definitions))
	for i, d := range Definitions {
		keys[i] = d.Key
	}
	return keys
}
