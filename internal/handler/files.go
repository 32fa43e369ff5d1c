package handler

import (
	"context"
	"io"

	tele "gopkg.in/telebot.v3"
)

// FileFetcher downloads files through the Bot API
type FileFetcher struct {
	bot *tele.Bot
}

// NewFileFetcher creates a fetcher bound to bot
func NewFileFetcher(bot *tele.Bot) *FileFetcher {
	return &FileFetcher{bot: bot}
}

// Fetch opens the file's content. The Bot API client has its own timeout,
// so ctx is only checked before the request starts.
func (f *FileFetcher) Fetch(ctx context.Context, fileID string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.bot.File(&tele.File{FileID: fileID})
}
