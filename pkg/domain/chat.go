package domain

import "strings"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message of a conversation.
type Turn struct {
	Role  string        `json:"role"`
	Parts []ContentPart `json:"parts"`
}

type ContentPartType string

const (
	ContentPartTypeText  ContentPartType = "text"
	ContentPartTypeImage ContentPartType = "image_url"
)

type ContentPart struct {
	Type ContentPartType `json:"type"`
	Text string          `json:"text,omitempty"`
	URL  string          `json:"url,omitempty"`
}

func TextPart(text string) ContentPart {
	return ContentPart{Type: ContentPartTypeText, Text: text}
}

func ImagePart(url string) ContentPart {
	return ContentPart{Type: ContentPartTypeImage, URL: url}
}

func NewTextTurn(role, text string) Turn {
	return Turn{Role: role, Parts: []ContentPart{TextPart(text)}}
}

// PlainText joins all text parts of the turn, ignoring images.
func (t Turn) PlainText() string {
	texts := make([]string, 0, len(t.Parts))
	for _, p := range t.Parts {
		if p.Type == ContentPartTypeText {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// Payload is a single request to the completion API.
type Payload struct {
	Model    string
	Messages []Turn
}
