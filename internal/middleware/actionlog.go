package middleware

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// RequestIDKey is the context key holding the update's request id
const RequestIDKey = "rid"

// ActionRecorder writes the per-user action log
type ActionRecorder interface {
	Log(userID int64, action, content string, fields ...zap.Field)
}

// ActionLog tags every update with a request id and records what the user did
func ActionLog(actions ActionRecorder, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			rid := uuid.NewString()
			c.Set(RequestIDKey, rid)

			var userID int64
			if sender := c.Sender(); sender != nil {
				userID = sender.ID
			}

			action, content := describe(c)
			actions.Log(userID, action, content, zap.String("rid", rid))

			logger.Debug("Update received",
				zap.String("rid", rid),
				zap.Int64("user_id", userID),
				zap.String("action", action),
			)

			return next(c)
		}
	}
}

// describe classifies an update for the action log
func describe(c tele.Context) (action, content string) {
	if cb := c.Callback(); cb != nil {
		if cb.Unique != "" {
			return "button", cb.Unique
		}
		return "button", strings.TrimSpace(cb.Data)
	}

	msg := c.Message()
	if msg == nil {
		return "update", ""
	}

	switch {
	case msg.Voice != nil:
		return "voice", msg.Voice.FileID
	case strings.HasPrefix(msg.Text, "/"):
		return "command", msg.Text
	case msg.Text != "":
		return "text", msg.Text
	default:
		return "message", ""
	}
}

// RequestID returns the request id set by ActionLog
func RequestID(c tele.Context) string {
	rid, _ := c.Get(RequestIDKey).(string)
	return rid
}
