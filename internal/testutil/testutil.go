package testutil

import (
	"jarvis/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestRecord creates a user record in the given menu holding notes
func NewTestRecord(menu domain.MenuState, notes ...string) domain.UserRecord {
	return domain.UserRecord{
		Menu:  menu,
		Notes: append([]string{}, notes...),
	}
}
