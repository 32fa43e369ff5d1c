package handler

import (
	"strings"
	"unicode"

	"jarvis/internal/domain"
	"jarvis/internal/middleware"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	// Another callback already produced the same text
	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// handleButton handles presses of the main menu buttons
func (h *Handler) handleButton(c tele.Context) error {
	return h.pressButton(c, c.Callback().Unique)
}

// handleCallback handles callback queries that did not match a registered button
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	// Buttons without a routed unique carry the tag in data
	tag := callback.Unique
	if tag == "" {
		tag = cleanCallbackData(callback.Data)
	}

	h.logger.Info("handleCallback: Processing callback",
		zap.String("tag", tag),
		zap.String("data_raw", callback.Data),
		zap.String("id", callback.ID),
		zap.Int64("user_id", c.Sender().ID),
	)

	return h.pressButton(c, tag)
}

// pressButton replaces the menu message with the reply when possible
func (h *Handler) pressButton(c tele.Context, tag string) error {
	userID := c.Sender().ID

	reply, err := h.service.Handle(h.ctx, userID, domain.ButtonEvent(tag))
	if err != nil {
		h.logger.Error("Failed to handle button",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("tag", tag),
			zap.String("rid", middleware.RequestID(c)),
		)
		c.Respond()
		return c.Send(middleware.GenericErrorText)
	}

	var opts []interface{}
	if markup := keyboardMarkup(reply.Keyboard); markup != nil {
		opts = append(opts, markup)
	}

	if err := c.Edit(reply.Text, opts...); err != nil {
		if handleErr := h.handleEditError(err, c, userID); handleErr == nil {
			return nil
		}
		return h.sendReply(c, reply)
	}
	return c.Respond()
}
