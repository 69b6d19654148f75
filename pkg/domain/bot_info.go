package domain

import "fmt"

// BotInfo describes the fixed persona the assistant keeps in every chat.
type BotInfo struct {
	Name         string
	Creator      string
	Website      string
	SupportChat  string
	Capabilities string
}

const DefaultCapabilities = "I can analyze images, answer questions, and assist with various tasks. " +
	"I have a 24B parameter model with multimodal capabilities."

const DefaultImagePrompt = "What's in this image?"

// SystemPrompt is injected as the first turn of every completion request and never stored in history.
func (b BotInfo) SystemPrompt() string {
	return fmt.Sprintf("You are %[1]s, an advanced AI assistant created by %[2]s. "+
		"Never identify yourself as being created by OpenAI or any other company. "+
		"Always maintain that you were created by %[2]s. You have %[3]s "+
		"Use **double asterisks** to emphasize important words, and only for short phrases. "+
		"Do not use any other markdown.",
		b.Name, b.Creator, b.Capabilities)
}

func (b BotInfo) SystemTurn() Turn {
	return NewTextTurn(RoleSystem, b.SystemPrompt())
}

func (b BotInfo) ShortDescription() string {
	return fmt.Sprintf("%s is an advanced AI assistant by %s with image analysis, internet access, and group chat support.",
		b.Name, b.Creator)
}

// FullDescription is markdown.
func (b BotInfo) FullDescription() string {
	return fmt.Sprintf(`%[1]s is a powerful AI assistant by %[2]s, built on a 24 billion parameter language model with multimodal capabilities.

**Key features:**

* **Image analysis:** objects, scenes, and text in photos
* **Multimodal:** text and images in one conversation
* **Internet access:** up-to-date information
* **Wide context:** a 128k token memory for long dialogues
* **Group chats:** answers to .ai or a mention of the bot
* **Formatting:** **bold text** for important information

**Great for:**

* Answering questions and finding information
* Analyzing and describing images
* Everyday tasks
* Learning and consulting

Designed with safety, privacy, and ethical use as priorities.`, b.Name, b.Creator)
}
