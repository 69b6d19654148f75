package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
)

const (
	CommandStart    = "start"
	CommandHelp     = "help"
	CommandAbout    = "about"
	CommandClear    = "clear"
	CommandWebsite  = "website"
	CommandContact  = "contact"
	CommandSettings = "settings"
	CommandFeedback = "feedback"
	CommandAsk      = "ai"

	// Keyboard-only actions without a slash form.
	actionAskPrompt   = "ask_prompt"
	actionImagePrompt = "image_prompt"
)

var buttonCommands = map[string]string{
	domain.ButtonAsk:     actionAskPrompt,
	domain.ButtonImage:   actionImagePrompt,
	domain.ButtonAbout:   CommandAbout,
	domain.ButtonWebsite: CommandWebsite,
	domain.ButtonHelp:    CommandHelp,
	domain.ButtonClear:   CommandClear,
}

var slashCommands = []string{
	CommandStart,
	CommandHelp,
	CommandAbout,
	CommandClear,
	CommandWebsite,
	CommandContact,
	CommandSettings,
	CommandFeedback,
	CommandAsk,
}

type CommandMatch int

const (
	NotCommand CommandMatch = iota
	OwnCommand
	ForeignCommand
)

// Command is a recognised slash command or keyboard button press.
type Command struct {
	Name string
	Args string
}

// ParseCommand recognises known slash commands and, in direct chats, keyboard
// button labels. A command suffixed with another bot's handle is reported as
// ForeignCommand.
func ParseCommand(text, botHandle string, kind domain.ChatKind) (Command, CommandMatch) {
	text = strings.TrimSpace(text)

	if name, ok := buttonCommands[text]; ok && kind == domain.ChatKindDirect {
		return Command{Name: name}, OwnCommand
	}

	if !strings.HasPrefix(text, "/") {
		return Command{}, NotCommand
	}

	head, args, _ := strings.Cut(text, " ")
	name, mention, addressed := strings.Cut(strings.TrimPrefix(head, "/"), "@")
	if addressed && !strings.EqualFold(mention, botHandle) {
		return Command{}, ForeignCommand
	}

	name = strings.ToLower(name)
	if !lo.Contains(slashCommands, name) {
		return Command{}, NotCommand
	}

	return Command{Name: name, Args: strings.TrimSpace(args)}, OwnCommand
}

type commandService struct {
	chatRepo ChatRepository
	bot      domain.BotInfo
}

func NewCommandService(chatRepo ChatRepository, bot domain.BotInfo) *commandService {
	return &commandService{
		chatRepo: chatRepo,
		bot:      bot,
	}
}

// Reply returns the canned reply of a command. The ask command has no canned reply.
func (c *commandService) Reply(ctx context.Context, chatID int64, name string) (string, error) {
	switch name {
	case CommandStart:
		return c.bot.StartText(), nil
	case CommandHelp:
		return c.bot.HelpText(), nil
	case CommandAbout:
		return c.bot.AboutText(), nil
	case CommandWebsite:
		return c.bot.WebsiteText(), nil
	case CommandContact:
		return c.bot.ContactText(), nil
	case CommandSettings:
		return c.bot.SettingsText(), nil
	case CommandFeedback:
		return c.bot.FeedbackText(), nil
	case actionAskPrompt:
		return domain.ClarifyingPromptText, nil
	case actionImagePrompt:
		return domain.ImagePromptText, nil
	case CommandClear:
		if err := c.chatRepo.Clear(ctx, chatID); err != nil {
			return "", fmt.Errorf("clearing chat history: %w", err)
		}
		return domain.HistoryClearedText, nil
	}

	return "", fmt.Errorf("unknown command %q", name)
}
