package api

import (
	"encoding/json"
)

type MarkupType string

const (
	Strong        MarkupType = "strong"
	Emphasized    MarkupType = "emphasized"
	Monospaced    MarkupType = "monospaced"
	Link          MarkupType = "link"
	Strikethrough MarkupType = "strikethrough"
	Underline     MarkupType = "underline"
	UserMention   MarkupType = "user_mention"
	Heading       MarkupType = "heading"
	Highlighted   MarkupType = "highlighted"
)

// MarkupElement is a styled span of message text.
// Most elements carry no data besides the span and are represented with Span.
type MarkupElement interface {
	MarkupType() MarkupType
	Range() (from, length int)
}

// Span is a markup element without attributes.
type Span struct {
	Type   MarkupType `json:"-"`
	From   int        `json:"from"`
	Length int        `json:"length"`
}

func (s *Span) MarkupType() MarkupType    { return s.Type }
func (s *Span) Range() (from, length int) { return s.From, s.Length }

func (s Span) MarshalJSON() ([]byte, error) {
	type plain Span
	return marshalTagged(typeKey, string(s.Type), plain(s))
}

type LinkMarkup struct {
	From   int    `json:"from"`
	Length int    `json:"length"`
	URL    string `json:"url"`
}

func (m *LinkMarkup) MarkupType() MarkupType    { return Link }
func (m *LinkMarkup) Range() (from, length int) { return m.From, m.Length }

func (m LinkMarkup) MarshalJSON() ([]byte, error) {
	type plain LinkMarkup
	return marshalTagged(typeKey, string(Link), plain(m))
}

type UserMentionMarkup struct {
	From     int     `json:"from"`
	Length   int     `json:"length"`
	UserLink *string `json:"user_link,omitempty"`
	UserID   *int64  `json:"user_id,omitempty"`
}

func (m *UserMentionMarkup) MarkupType() MarkupType    { return UserMention }
func (m *UserMentionMarkup) Range() (from, length int) { return m.From, m.Length }

func (m UserMentionMarkup) MarshalJSON() ([]byte, error) {
	type plain UserMentionMarkup
	return marshalTagged(typeKey, string(UserMention), plain(m))
}

type UnknownMarkup struct {
	Type MarkupType
	Raw  json.RawMessage
}

func (m *UnknownMarkup) MarkupType() MarkupType { return m.Type }

func (m *UnknownMarkup) Range() (from, length int) {
	var span Span
	_ = json.Unmarshal(m.Raw, &span)
	return span.From, span.Length
}

func (m UnknownMarkup) MarshalJSON() ([]byte, error) {
	return m.Raw, nil
}

func span(markupType MarkupType) func() MarkupElement {
	return func() MarkupElement { return &Span{Type: markupType} }
}

var markupVariants = variants[MarkupElement]{
	key: typeKey,
	known: map[string]func() MarkupElement{
		string(Strong):        span(Strong),
		string(Emphasized):    span(Emphasized),
		string(Monospaced):    span(Monospaced),
		string(Link):          func() MarkupElement { return new(LinkMarkup) },
		string(Strikethrough): span(Strikethrough),
		string(Underline):     span(Underline),
		string(UserMention):   func() MarkupElement { return new(UserMentionMarkup) },
		string(Heading):       span(Heading),
		string(Highlighted):   span(Highlighted),
	},
	unknown: func(kind string, raw json.RawMessage) MarkupElement {
		return &UnknownMarkup{Type: MarkupType(kind), Raw: raw}
	},
}

// Markup is the list of message text markup elements.
type Markup []MarkupElement

func (m *Markup) UnmarshalJSON(data []byte) error {
	values, err := markupVariants.decodeSlice(data)
	if err != nil {
		return err
	}

	*m = values
	return nil
}
