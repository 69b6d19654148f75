package domain

type ChatKind string

const (
	ChatKindDirect ChatKind = "direct"
	ChatKindGroup  ChatKind = "group"
)

// Message is an inbound chat update reduced to what the gateway needs.
type Message struct {
	UpdateID int
	ChatID   int64
	ChatKind ChatKind
	Text     string
	Caption  string
	Photos   []Photo
}

// Photo is one size variant of an attached picture.
type Photo struct {
	FileID string
	Width  int
	Height int
}

func (m Message) HasImage() bool {
	return len(m.Photos) > 0
}
