package parse

import "time"

// TimeLayout is the date/time representation used in export header lines.
const TimeLayout = "02.01.06, 15:04"

// DayLayout formats the calendar day of a message.
const DayLayout = "02.01.06"

// SystemSender is the sender of group notices that have no author.
const SystemSender = "<system>"

// Kind tags a message as plain text or one of the special placeholder types.
type Kind int

const (
	KindText Kind = iota
	KindSystem
	KindMedia
	KindDeleted
	KindContact
	KindLocation
)

var kindNames = [...]string{"text", "system", "media", "deleted", "contact", "location"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return KindText, false
}

type Message struct {
	Time   time.Time
	Sender string
	Text   string
	Kind   Kind
	Line   int // line number of the header in the export
}

func (m Message) IsSystem() bool   { return m.Kind == KindSystem }
func (m Message) IsMedia() bool    { return m.Kind == KindMedia }
func (m Message) IsDeleted() bool  { return m.Kind == KindDeleted }
func (m Message) IsContact() bool  { return m.Kind == KindContact }
func (m Message) IsLocation() bool { return m.Kind == KindLocation }

// IsSpecial reports whether the message is anything other than plain text.
func (m Message) IsSpecial() bool { return m.Kind != KindText }

func (m Message) TimeString() string { return m.Time.Format(TimeLayout) }

func (m Message) Day() string { return m.Time.Format(DayLayout) }

func (m Message) String() string {
	return m.TimeString() + ": " + m.Sender + " - " + m.Text
}

type ChatMeta struct {
	ChatKey  string
	Name     string
	FilePath string
	FirstAt  time.Time
	LastAt   time.Time
	Mtime    time.Time
	Size     int64
}

type ParseResult struct {
	Meta     ChatMeta
	Messages []Message
}
