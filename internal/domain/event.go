package domain

// EventKind identifies the type of an inbound event
type EventKind int

const (
	EventStart EventKind = iota + 1
	EventHelp
	EventButton
	EventText
	EventVoice
	EventCommand
)

// Event is an inbound user action, independent of the transport
type Event struct {
	Kind EventKind
	// Tag is the button identifier for EventButton
	Tag string
	// Text is the message text for EventText
	Text string
	// FileID is the platform file identifier for EventVoice
	FileID string
	// Command and Args describe EventCommand
	Command string
	Args    []string
}

// StartEvent builds a Start event
func StartEvent() Event { return Event{Kind: EventStart} }

// HelpEvent builds a Help event
func HelpEvent() Event { return Event{Kind: EventHelp} }

// ButtonEvent builds a button press event
func ButtonEvent(tag string) Event { return Event{Kind: EventButton, Tag: tag} }

// TextEvent builds a free text event
func TextEvent(text string) Event { return Event{Kind: EventText, Text: text} }

// VoiceEvent builds a voice message event
func VoiceEvent(fileID string) Event { return Event{Kind: EventVoice, FileID: fileID} }

// CommandEvent builds a slash command event
func CommandEvent(name string, args ...string) Event {
	return Event{Kind: EventCommand, Command: name, Args: args}
}

// Button is a labeled action offered to the user
type Button struct {
	Tag   string
	Label string
}

// Reply is what the bot sends back for a handled event
type Reply struct {
	Text     string
	Keyboard []Button
	// Voices are archived clip locations to send after the text
	Voices []string
}
