package addressing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
)

func TestClassify(t *testing.T) {
	c := NewClassifier([]string{".ai"})

	tests := []struct {
		name   string
		in     Input
		handle string
		want   Result
	}{
		{
			name: "direct chat is always addressed and untouched",
			in:   Input{ChatKind: domain.ChatKindDirect, Text: "  hello ", Caption: "cap"},
			want: Result{Outcome: Addressed, Text: "  hello ", Caption: "cap"},
		},
		{
			name: "direct chat with prefix keeps it",
			in:   Input{ChatKind: domain.ChatKindDirect, Text: ".ai what"},
			want: Result{Outcome: Addressed, Text: ".ai what"},
		},
		{
			name:   "group without prefix or mention",
			in:     Input{ChatKind: domain.ChatKindGroup, Text: "hello"},
			handle: "amethyst_bot",
			want:   Result{Outcome: NotAddressed},
		},
		{
			name: "group prefix is stripped",
			in:   Input{ChatKind: domain.ChatKindGroup, Text: ".ai what is 2+2"},
			want: Result{Outcome: Addressed, Text: "what is 2+2"},
		},
		{
			name: "group prefix is case insensitive",
			in:   Input{ChatKind: domain.ChatKindGroup, Text: ".AI Hi"},
			want: Result{Outcome: Addressed, Text: "Hi"},
		},
		{
			name: "prefix must be anchored",
			in:   Input{ChatKind: domain.ChatKindGroup, Text: "say .ai hi"},
			want: Result{Outcome: NotAddressed},
		},
		{
			name: "prefix needs a word boundary",
			in:   Input{ChatKind: domain.ChatKindGroup, Text: ".aimless"},
			want: Result{Outcome: NotAddressed},
		},
		{
			name:   "mention anywhere is stripped",
			in:     Input{ChatKind: domain.ChatKindGroup, Text: "hey @Amethyst_Bot how are you"},
			handle: "amethyst_bot",
			want:   Result{Outcome: Addressed, Text: "hey  how are you"},
		},
		{
			name:   "mention of a longer handle does not match",
			in:     Input{ChatKind: domain.ChatKindGroup, Text: "@amethyst_bot2 hi"},
			handle: "amethyst_bot",
			want:   Result{Outcome: NotAddressed},
		},
		{
			name:   "handle inside an email address is not a mention",
			in:     Input{ChatKind: domain.ChatKindGroup, Text: "mail me@amethyst_bot.com"},
			handle: "amethyst_bot",
			want:   Result{Outcome: NotAddressed},
		},
		{
			name:   "mention after punctuation keeps the punctuation",
			in:     Input{ChatKind: domain.ChatKindGroup, Text: "(@amethyst_bot) what time is it"},
			handle: "amethyst_bot",
			want:   Result{Outcome: Addressed, Text: "() what time is it"},
		},
		{
			name:   "mention at the start of the text",
			in:     Input{ChatKind: domain.ChatKindGroup, Text: "@amethyst_bot: hi"},
			handle: "amethyst_bot",
			want:   Result{Outcome: Addressed, Text: ": hi"},
		},
		{
			name: "failed handle lookup disables mentions",
			in:   Input{ChatKind: domain.ChatKindGroup, Text: "@amethyst_bot hi"},
			want: Result{Outcome: NotAddressed},
		},
		{
			name:   "caption prefix on a photo",
			in:     Input{ChatKind: domain.ChatKindGroup, Caption: ".ai what is this", HasImage: true},
			handle: "amethyst_bot",
			want:   Result{Outcome: Addressed, Caption: "what is this"},
		},
		{
			name:   "bare prefix is an empty address",
			in:     Input{ChatKind: domain.ChatKindGroup, Text: ".ai"},
			handle: "amethyst_bot",
			want:   Result{Outcome: EmptyAddress},
		},
		{
			name:   "bare mention with photo is addressed",
			in:     Input{ChatKind: domain.ChatKindGroup, Caption: "@amethyst_bot", HasImage: true},
			handle: "@amethyst_bot",
			want:   Result{Outcome: Addressed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.in, tt.handle))
		})
	}
}

func TestClassifyMultiplePrefixes(t *testing.T) {
	c := NewClassifier([]string{".ai", "!ask", " "})

	got := c.Classify(Input{ChatKind: domain.ChatKindGroup, Text: "!ASK tell me"}, "")

	assert.Equal(t, Result{Outcome: Addressed, Text: "tell me"}, got)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "addressed", Addressed.String())
	assert.Equal(t, "not_addressed", NotAddressed.String())
	assert.Equal(t, "empty_address", EmptyAddress.String())
}
