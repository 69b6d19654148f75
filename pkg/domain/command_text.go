package domain

import "fmt"

const (
	ButtonAsk     = "🔍 Ask a question"
	ButtonImage   = "📷 Analyze image"
	ButtonAbout   = "ℹ️ About"
	ButtonWebsite = "🌐 Website"
	ButtonHelp    = "📚 Commands"
	ButtonClear   = "🧹 Clear history"
)

// MainKeyboard is attached to every reply as a resizable reply keyboard.
var MainKeyboard = [][]string{
	{ButtonAsk, ButtonImage},
	{ButtonAbout, ButtonWebsite},
	{ButtonHelp, ButtonClear},
}

const (
	ClarifyingPromptText = "I'm ready to answer your questions! What would you like to know?"
	ImagePromptText      = "Please send me an image, and I'll analyze what's in it."
	HistoryClearedText   = "Conversation history has been cleared."
	AttachmentFailedText = "⚠️ I couldn't process your image, so I'll answer using your text only."
	TransientErrorText   = "Извините, произошла ошибка при обработке вашего запроса. " +
		"Пожалуйста, попробуйте еще раз через несколько секунд."
)

func (b BotInfo) DisabledText() string {
	return fmt.Sprintf("⏸ %s is temporarily disabled. Please try again later.", b.Name)
}

func (b BotInfo) StartText() string {
	return fmt.Sprintf(`Hello! I'm %s, an AI assistant created by %s.

I have internet access and can help with many tasks including analyzing images.

Visit our website: %s
Need help? Contact support: %s`, b.Name, b.Creator, b.Website, b.SupportChat)
}

func (b BotInfo) HelpText() string {
	return fmt.Sprintf(`%[1]s Bot Commands:

/start - Start or restart the bot
/help - Show this help message
/about - Learn about %[1]s and %[2]s
/clear - Clear your conversation history
/ai <question> - Ask %[1]s directly
/settings - Adjust bot settings
/feedback - Send feedback to our team
/contact - Get support contact information
/website - Open our website

In group chats start your message with .ai or mention me.
You can also use the buttons below or send me images for analysis and ask me any questions.`, b.Name, b.Creator)
}

func (b BotInfo) AboutText() string {
	return fmt.Sprintf(`About %[1]s:

%[1]s is an advanced AI model with 24 billion parameters created by %[2]s.

Features:
• Advanced multimodal capabilities
• State-of-the-art performance in text-based reasoning
• 128k token context window
• Image analysis capabilities

Visit %[3]s for more information.`, b.Name, b.Creator, b.Website)
}

func (b BotInfo) WebsiteText() string {
	return fmt.Sprintf("Visit our website to learn more about %s and %s: %s", b.Name, b.Creator, b.Website)
}

func (b BotInfo) ContactText() string {
	return fmt.Sprintf(`Need help or have questions? Contact our support team:

Support chat: %s
Website: %s`, b.SupportChat, b.Website)
}

func (b BotInfo) SettingsText() string {
	return fmt.Sprintf(`%s Settings:

Currently, you can clear your conversation history using the /clear command.

More settings options will be available soon!`, b.Name)
}

func (b BotInfo) FeedbackText() string {
	return fmt.Sprintf(`We value your feedback! Please share your thoughts about %s.

Your message will be forwarded to the %s team.

To send feedback, reply to this message with your comments.`, b.Name, b.Creator)
}
