package domain

type ParseMode string

const (
	ParseModePlain ParseMode = ""
	ParseModeHTML  ParseMode = "HTML"
)

// Reply is an outbound message to a chat.
type Reply struct {
	ChatID    int64
	Text      string
	ParseMode ParseMode
	Keyboard  [][]string
}
