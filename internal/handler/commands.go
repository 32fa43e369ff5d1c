package handler

import (
	"jarvis/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleCommand returns the handler for a slash command
func (h *Handler) handleCommand(name string) tele.HandlerFunc {
	return func(c tele.Context) error {
		h.logger.Info("Command received",
			zap.Int64("user_id", c.Sender().ID),
			zap.String("username", c.Sender().Username),
			zap.String("command", name),
		)

		switch name {
		case "start":
			return h.dispatch(c, domain.StartEvent())
		case "help":
			return h.dispatch(c, domain.HelpEvent())
		default:
			return h.dispatch(c, domain.CommandEvent(name, c.Args()...))
		}
	}
}
