package middleware

import (
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// GenericErrorText is sent when a request fails unexpectedly
const GenericErrorText = "Произошла ошибка. Попробуйте позже."

// Recover catches panics in handlers so one bad update cannot stop the bot
func Recover(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				logger.Error("Panic recovered",
					zap.String("rid", RequestID(c)),
					zap.Any("panic", r),
					zap.String("stack", string(debug.Stack())),
				)

				if c.Callback() != nil {
					c.Respond()
				}
				if sendErr := c.Send(GenericErrorText); sendErr != nil {
					err = fmt.Errorf("recovered from panic %v: %w", r, sendErr)
					return
				}
				err = nil
			}()
			return next(c)
		}
	}
}
