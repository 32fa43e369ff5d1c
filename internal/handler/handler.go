package handler

import (
	"context"

	"jarvis/internal/domain"
	"jarvis/internal/middleware"
	"jarvis/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// EventHandler processes transport-independent user events
type EventHandler interface {
	Handle(ctx context.Context, userID int64, ev domain.Event) (domain.Reply, error)
}

// Handler manages all bot interactions
type Handler struct {
	ctx     context.Context
	bot     *tele.Bot
	service EventHandler
	logger  *zap.Logger
}

// NewHandler creates a new handler instance. ctx bounds every request.
func NewHandler(
	ctx context.Context,
	bot *tele.Bot,
	botService EventHandler,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		ctx:     ctx,
		bot:     bot,
		service: botService,
		logger:  logger,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	for _, cmd := range service.Commands {
		h.bot.Handle("/"+cmd.Name, h.handleCommand(cmd.Name))
	}

	// Messages
	h.bot.Handle(tele.OnText, h.handleText)
	h.bot.Handle(tele.OnVoice, h.handleVoice)

	// Inline buttons
	for _, btn := range service.MainMenu {
		h.bot.Handle(&tele.Btn{Unique: btn.Tag}, h.handleButton)
	}

	// Generic callback handler for buttons that did not match by unique
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// PublishCommands sets the command list shown by Telegram clients
func (h *Handler) PublishCommands() error {
	commands := make([]tele.Command, 0, len(service.Commands))
	for _, cmd := range service.Commands {
		commands = append(commands, tele.Command{Text: cmd.Name, Description: cmd.Description})
	}
	return h.bot.SetCommands(commands)
}

// dispatch runs an event through the service and sends the reply
func (h *Handler) dispatch(c tele.Context, ev domain.Event) error {
	userID := c.Sender().ID

	reply, err := h.service.Handle(h.ctx, userID, ev)
	if err != nil {
		h.logger.Error("Failed to handle event",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("rid", middleware.RequestID(c)),
		)
		if c.Callback() != nil {
			c.Respond()
		}
		return c.Send(middleware.GenericErrorText)
	}

	return h.sendReply(c, reply)
}

// sendReply sends the reply text followed by any voice attachments
func (h *Handler) sendReply(c tele.Context, reply domain.Reply) error {
	var opts []interface{}
	if markup := keyboardMarkup(reply.Keyboard); markup != nil {
		opts = append(opts, markup)
	}

	if err := c.Send(reply.Text, opts...); err != nil {
		return err
	}

	for _, path := range reply.Voices {
		if err := c.Send(&tele.Voice{File: tele.FromDisk(path)}); err != nil {
			h.logger.Warn("Failed to send voice",
				zap.Error(err),
				zap.Int64("user_id", c.Sender().ID),
				zap.String("path", path),
			)
		}
	}
	return nil
}

// keyboardMarkup renders buttons as an inline keyboard, one per row
func keyboardMarkup(buttons []domain.Button) *tele.ReplyMarkup {
	if len(buttons) == 0 {
		return nil
	}

	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, markup.Row(markup.Data(b.Label, b.Tag)))
	}
	markup.Inline(rows...)
	return markup
}
