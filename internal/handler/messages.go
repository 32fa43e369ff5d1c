package handler

import (
	"jarvis/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// handleText handles all text messages that are not registered commands
func (h *Handler) handleText(c tele.Context) error {
	return h.dispatch(c, domain.TextEvent(c.Text()))
}

// handleVoice handles voice messages
func (h *Handler) handleVoice(c tele.Context) error {
	voice := c.Message().Voice
	if voice == nil {
		return nil
	}

	// Downloads can take a while
	c.Notify(tele.Typing)

	return h.dispatch(c, domain.VoiceEvent(voice.FileID))
}
