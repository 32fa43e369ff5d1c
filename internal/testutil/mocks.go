package testutil

import (
	"context"
	"io"

	"jarvis/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockVoiceArchive is a mock for repository.VoiceArchive
type MockVoiceArchive struct {
	mock.Mock
}

func (m *MockVoiceArchive) Save(ctx context.Context, userID int64, fileID string, r io.Reader) (int, error) {
	args := m.Called(ctx, userID, fileID, r)
	return args.Int(0), args.Error(1)
}

func (m *MockVoiceArchive) List(ctx context.Context, userID int64) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockCurrencyConverter is a mock for service.CurrencyConverter
type MockCurrencyConverter struct {
	mock.Mock
}

func (m *MockCurrencyConverter) Convert(ctx context.Context, amount float64, from, to string) (domain.Conversion, error) {
	args := m.Called(ctx, amount, from, to)
	return args.Get(0).(domain.Conversion), args.Error(1)
}

// MockWeatherProvider is a mock for service.WeatherProvider
type MockWeatherProvider struct {
	mock.Mock
}

func (m *MockWeatherProvider) Current(ctx context.Context, city string) (domain.WeatherReport, error) {
	args := m.Called(ctx, city)
	return args.Get(0).(domain.WeatherReport), args.Error(1)
}

// MockChatModel is a mock for service.ChatModel
type MockChatModel struct {
	mock.Mock
}

func (m *MockChatModel) Complete(ctx context.Context, prompt domain.Prompt) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockFileFetcher is a mock for service.FileFetcher
type MockFileFetcher struct {
	mock.Mock
}

func (m *MockFileFetcher) Fetch(ctx context.Context, fileID string) (io.ReadCloser, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
