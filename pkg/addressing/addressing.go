// Package addressing decides whether an inbound chat message is meant for the bot.
package addressing

import (
	"regexp"
	"strings"

	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
)

type Outcome int

const (
	NotAddressed Outcome = iota
	Addressed
	// EmptyAddress means the bot was called but nothing was asked.
	EmptyAddress
)

func (o Outcome) String() string {
	switch o {
	case Addressed:
		return "addressed"
	case EmptyAddress:
		return "empty_address"
	default:
		return "not_addressed"
	}
}

type Input struct {
	ChatKind domain.ChatKind
	Text     string
	Caption  string
	HasImage bool
}

type Result struct {
	Outcome Outcome
	Text    string
	Caption string
}

// Classifier matches group messages by a reserved prefix or an @mention.
type Classifier struct {
	prefixes []*regexp.Regexp
}

func NewClassifier(prefixes []string) *Classifier {
	c := &Classifier{}
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		c.prefixes = append(c.prefixes, regexp.MustCompile(`(?i)^\s*`+regexp.QuoteMeta(p)+wordEnd(p)))
	}
	return c
}

// Classify returns the addressing decision for in. An empty botHandle means the
// handle lookup failed, so only prefix addressing is possible.
func (c *Classifier) Classify(in Input, botHandle string) Result {
	if in.ChatKind != domain.ChatKindGroup {
		return Result{Outcome: Addressed, Text: in.Text, Caption: in.Caption}
	}

	mention := mentionPattern(botHandle)

	text, textHit := c.strip(in.Text, mention)
	caption, captionHit := c.strip(in.Caption, mention)
	if !textHit && !captionHit {
		return Result{Outcome: NotAddressed}
	}

	if !textHit {
		text = strings.TrimSpace(in.Text)
	}
	if !captionHit {
		caption = strings.TrimSpace(in.Caption)
	}

	if text == "" && caption == "" && !in.HasImage {
		return Result{Outcome: EmptyAddress}
	}
	return Result{Outcome: Addressed, Text: text, Caption: caption}
}

func (c *Classifier) strip(s string, mention *regexp.Regexp) (string, bool) {
	if s == "" {
		return "", false
	}
	for _, p := range c.prefixes {
		if loc := p.FindStringIndex(s); loc != nil {
			return strings.TrimSpace(s[loc[1]:]), true
		}
	}
	if mention != nil {
		// Group 1 is the character before "@" and stays in the text.
		if loc := mention.FindStringSubmatchIndex(s); loc != nil {
			return strings.TrimSpace(s[:loc[3]] + s[loc[1]:]), true
		}
	}
	return s, false
}

func mentionPattern(botHandle string) *regexp.Regexp {
	botHandle = strings.TrimPrefix(strings.TrimSpace(botHandle), "@")
	if botHandle == "" {
		return nil
	}
	return regexp.MustCompile(`(?i)(^|[^\w])@` + regexp.QuoteMeta(botHandle) + `\b`)
}

// wordEnd requires a word boundary after prefixes ending in a word character,
// so ".ai" does not match ".aim".
func wordEnd(prefix string) string {
	last := prefix[len(prefix)-1]
	if last == '_' || ('0' <= last && last <= '9') || ('a' <= last && last <= 'z') || ('A' <= last && last <= 'Z') {
		return `\b`
	}
	return ""
}
