package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"jarvis/internal/domain"
	"jarvis/internal/repository"

	"go.uber.org/zap"
)

// DefaultSystemPrompt sets the assistant persona
const DefaultSystemPrompt = "Ты J.A.R.V.I.S., вежливый и лаконичный личный помощник. Отвечай на русском языке."

// CurrencyConverter converts amounts between currencies
type CurrencyConverter interface {
	Convert(ctx context.Context, amount float64, from, to string) (domain.Conversion, error)
}

// WeatherProvider reports current weather for a city
type WeatherProvider interface {
	Current(ctx context.Context, city string) (domain.WeatherReport, error)
}

// ChatModel answers free-form questions
type ChatModel interface {
	Complete(ctx context.Context, prompt domain.Prompt) (string, error)
}

// FileFetcher downloads a file from the messaging platform
type FileFetcher interface {
	Fetch(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// Options tune assistant behaviour
type Options struct {
	// Trigger is the phrase that addresses the assistant in the main menu
	Trigger      string
	SystemPrompt string
}

// BotService routes user events through the menu state machine
type BotService struct {
	store    repository.StateStore
	voices   repository.VoiceArchive
	files    FileFetcher
	currency CurrencyConverter
	weather  WeatherProvider
	chat     ChatModel
	opts     Options
	logger   *zap.Logger
	locks    *userLocks
}

// NewBotService creates a new bot service
func NewBotService(
	store repository.StateStore,
	voices repository.VoiceArchive,
	files FileFetcher,
	currency CurrencyConverter,
	weather WeatherProvider,
	chat ChatModel,
	opts Options,
	logger *zap.Logger,
) *BotService {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	return &BotService{
		store:    store,
		voices:   voices,
		files:    files,
		currency: currency,
		weather:  weather,
		chat:     chat,
		opts:     opts,
		logger:   logger,
		locks:    newUserLocks(),
	}
}

// Handle processes one event for a user. Events of the same user are handled
// one at a time. Returned errors wrap domain.ErrPersistence or the context error.
func (s *BotService) Handle(ctx context.Context, userID int64, ev domain.Event) (domain.Reply, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	switch ev.Kind {
	case domain.EventStart:
		return s.start(ctx, userID)
	case domain.EventHelp:
		return s.help(ctx, userID)
	case domain.EventButton:
		return s.button(ctx, userID, ev.Tag)
	case domain.EventText:
		return s.text(ctx, userID, ev.Text)
	case domain.EventVoice:
		return s.voice(ctx, userID, ev.FileID)
	case domain.EventCommand:
		return s.command(ctx, userID, ev.Command, ev.Args)
	default:
		if _, err := s.touch(ctx, userID); err != nil {
			return domain.Reply{}, err
		}
		return domain.Reply{Text: textUnknownCommand}, nil
	}
}

func (s *BotService) start(ctx context.Context, userID int64) (domain.Reply, error) {
	if err := s.setMenu(ctx, userID, domain.MenuMain); err != nil {
		return domain.Reply{}, err
	}
	return domain.Reply{Text: textGreeting, Keyboard: MainMenu}, nil
}

func (s *BotService) help(ctx context.Context, userID int64) (domain.Reply, error) {
	if _, err := s.touch(ctx, userID); err != nil {
		return domain.Reply{}, err
	}
	return domain.Reply{Text: helpText()}, nil
}

func (s *BotService) button(ctx context.Context, userID int64, tag string) (domain.Reply, error) {
	switch tag {
	case TagConvert:
		return s.enter(ctx, userID, domain.MenuConvert, textConvertPrompt)
	case TagWeather:
		return s.enter(ctx, userID, domain.MenuWeather, textWeatherPrompt)
	case TagNotes:
		return s.enter(ctx, userID, domain.MenuNotes, textNotesPrompt)
	}

	s.logger.Warn("Unknown button", zap.Int64("user_id", userID), zap.String("tag", tag))
	if _, err := s.touch(ctx, userID); err != nil {
		return domain.Reply{}, err
	}
	return domain.Reply{Text: textUnknownButton}, nil
}

func (s *BotService) enter(ctx context.Context, userID int64, menu domain.MenuState, prompt string) (domain.Reply, error) {
	if err := s.setMenu(ctx, userID, menu); err != nil {
		return domain.Reply{}, err
	}
	return domain.Reply{Text: prompt}, nil
}

func (s *BotService) command(ctx context.Context, userID int64, name string, args []string) (domain.Reply, error) {
	switch strings.ToLower(strings.TrimPrefix(name, "/")) {
	case "start":
		return s.start(ctx, userID)
	case "help":
		return s.help(ctx, userID)
	case TagConvert:
		return s.enter(ctx, userID, domain.MenuConvert, textConvertPrompt)
	case TagWeather:
		return s.enter(ctx, userID, domain.MenuWeather, textWeatherPrompt)
	case TagNotes:
		return s.enter(ctx, userID, domain.MenuNotes, textNotesPrompt)
	case "list":
		return s.listNotes(ctx, userID)
	case "del":
		return s.deleteNote(ctx, userID, args)
	case "voices":
		return s.listVoices(ctx, userID)
	case "ask":
		return s.askCommand(ctx, userID, args)
	}

	if _, err := s.touch(ctx, userID); err != nil {
		return domain.Reply{}, err
	}
	return domain.Reply{Text: textUnknownCommand}, nil
}

func (s *BotService) text(ctx context.Context, userID int64, text string) (domain.Reply, error) {
	text = strings.TrimSpace(text)

	rec, err := s.touch(ctx, userID)
	if err != nil {
		return domain.Reply{}, err
	}

	if strings.HasPrefix(text, "/") {
		return domain.Reply{Text: textUnknownCommand}, nil
	}

	switch rec.Menu {
	case domain.MenuConvert:
		return s.convert(ctx, userID, text), nil
	case domain.MenuWeather:
		return s.currentWeather(ctx, userID, text), nil
	case domain.MenuNotes:
		return s.addNote(ctx, userID, text)
	default:
		question, _ := stripTrigger(text, s.opts.Trigger)
		if question == "" {
			return domain.Reply{Text: textAssistantListen}, nil
		}
		return s.ask(ctx, userID, question), nil
	}
}

func (s *BotService) convert(ctx context.Context, userID int64, text string) domain.Reply {
	req, err := parseConversion(text)
	if err != nil {
		return domain.Reply{Text: textConvertFormat}
	}

	conv, err := s.currency.Convert(ctx, req.Amount, req.From, req.To)
	if err != nil {
		s.logger.Warn("Currency conversion failed",
			zap.Int64("user_id", userID),
			zap.String("from", req.From),
			zap.String("to", req.To),
			zap.Error(err),
		)
		return domain.Reply{Text: textConvertFailed}
	}

	return domain.Reply{Text: formatConversion(req, conv)}
}

func (s *BotService) currentWeather(ctx context.Context, userID int64, city string) domain.Reply {
	if city == "" {
		return domain.Reply{Text: textWeatherPrompt}
	}

	report, err := s.weather.Current(ctx, city)
	if err != nil {
		s.logger.Warn("Weather lookup failed",
			zap.Int64("user_id", userID),
			zap.String("city", city),
			zap.Error(err),
		)
		return domain.Reply{Text: textWeatherFailed}
	}

	return domain.Reply{Text: formatWeather(report)}
}

func (s *BotService) addNote(ctx context.Context, userID int64, text string) (domain.Reply, error) {
	if text == "" {
		return domain.Reply{Text: textNotesPrompt}, nil
	}

	_, err := s.update(ctx, userID, func(rec *domain.UserRecord) error {
		rec.AppendNote(text)
		return nil
	})
	if err != nil {
		return domain.Reply{}, err
	}
	return domain.Reply{Text: textNoteSaved}, nil
}

func (s *BotService) listNotes(ctx context.Context, userID int64) (domain.Reply, error) {
	rec, err := s.touch(ctx, userID)
	if err != nil {
		return domain.Reply{}, err
	}
	return domain.Reply{Text: formatNotes(rec.ListNotes())}, nil
}

func (s *BotService) deleteNote(ctx context.Context, userID int64, args []string) (domain.Reply, error) {
	if _, err := s.touch(ctx, userID); err != nil {
		return domain.Reply{}, err
	}

	position, err := parsePosition(args)
	if err != nil {
		return domain.Reply{Text: textDelFormat}, nil
	}

	var (
		removed string
		count   int
	)
	_, err = s.update(ctx, userID, func(rec *domain.UserRecord) error {
		count = len(rec.Notes)
		var delErr error
		removed, delErr = rec.DeleteNote(position)
		return delErr
	})
	if errors.Is(err, domain.ErrOutOfRange) {
		if count == 0 {
			return domain.Reply{Text: textNoNotes}, nil
		}
		return domain.Reply{Text: fmt.Sprintf(textNoteNotExists, position, count)}, nil
	}
	if err != nil {
		return domain.Reply{}, err
	}

	return domain.Reply{Text: fmt.Sprintf(textNoteDeleted, position, removed)}, nil
}

func (s *BotService) voice(ctx context.Context, userID int64, fileID string) (domain.Reply, error) {
	if _, err := s.touch(ctx, userID); err != nil {
		return domain.Reply{}, err
	}

	body, err := s.files.Fetch(ctx, fileID)
	if err != nil {
		s.logger.Warn("Voice download failed",
			zap.Int64("user_id", userID),
			zap.String("file_id", fileID),
			zap.Error(err),
		)
		return domain.Reply{Text: textVoiceFetchFailed}, nil
	}
	defer body.Close()

	count, err := s.voices.Save(ctx, userID, fileID, body)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("save voice: %w", err)
	}

	return domain.Reply{Text: fmt.Sprintf(textVoiceSaved, count)}, nil
}

func (s *BotService) listVoices(ctx context.Context, userID int64) (domain.Reply, error) {
	if _, err := s.touch(ctx, userID); err != nil {
		return domain.Reply{}, err
	}

	paths, err := s.voices.List(ctx, userID)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("list voices: %w", err)
	}
	if len(paths) == 0 {
		return domain.Reply{Text: textNoVoices}, nil
	}

	return domain.Reply{Text: fmt.Sprintf(textVoicesHeader, len(paths)), Voices: paths}, nil
}

func (s *BotService) askCommand(ctx context.Context, userID int64, args []string) (domain.Reply, error) {
	if _, err := s.touch(ctx, userID); err != nil {
		return domain.Reply{}, err
	}

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return domain.Reply{Text: textAskUsage}, nil
	}
	return s.ask(ctx, userID, question), nil
}

func (s *BotService) ask(ctx context.Context, userID int64, question string) domain.Reply {
	answer, err := s.chat.Complete(ctx, domain.Prompt{System: s.opts.SystemPrompt, User: question})
	if err != nil {
		s.logger.Warn("Assistant request failed", zap.Int64("user_id", userID), zap.Error(err))
		return domain.Reply{Text: textAssistantOffline}
	}
	return domain.Reply{Text: answer}
}

// touch returns the user's record, persisting defaults on first contact
func (s *BotService) touch(ctx context.Context, userID int64) (domain.UserRecord, error) {
	return s.update(ctx, userID, func(*domain.UserRecord) error { return nil })
}

func (s *BotService) setMenu(ctx context.Context, userID int64, menu domain.MenuState) error {
	_, err := s.update(ctx, userID, func(rec *domain.UserRecord) error {
		rec.Menu = menu
		return nil
	})
	return err
}

func (s *BotService) update(ctx context.Context, userID int64, fn repository.UpdateFunc) (domain.UserRecord, error) {
	rec, err := s.store.UpdateRecord(ctx, userID, fn)
	if errors.Is(err, domain.ErrPersistence) {
		return rec, fmt.Errorf("update user %d: %w", userID, err)
	}
	return rec, err
}
