package service

import (
	"fmt"
	"strconv"
	"strings"

	"jarvis/internal/domain"
)

// Button tags shared with the transport layer
const (
	TagConvert = "convert"
	TagWeather = "weather"
	TagNotes   = "notes"
)

// MainMenu is the keyboard shown with the greeting
var MainMenu = []domain.Button{
	{Tag: TagConvert, Label: "💱 Конвертер валют"},
	{Tag: TagWeather, Label: "🌤 Погода"},
	{Tag: TagNotes, Label: "📝 Заметки"},
}

// Command describes a slash command published to users
type Command struct {
	Name        string
	Description string
}

// Commands lists every command the bot understands
var Commands = []Command{
	{Name: "start", Description: "Главное меню"},
	{Name: "help", Description: "Список команд"},
	{Name: "convert", Description: "Конвертер валют"},
	{Name: "weather", Description: "Погода"},
	{Name: "notes", Description: "Заметки"},
	{Name: "list", Description: "Показать заметки"},
	{Name: "del", Description: "Удалить заметку по номеру"},
	{Name: "voices", Description: "Прислать сохранённые голосовые"},
	{Name: "ask", Description: "Задать вопрос ассистенту"},
}

const (
	textGreeting = "Привет! Тебя приветствует твой личный помощник J.A.R.V.I.S. Выбери действие:"

	textConvertPrompt = "💱 Конвертер валют\n\n" +
		"Напиши в формате: `<сумма> <из валюты> <в валюту>`\nПример: `100 USD RUB`\n\n" +
		"Чтобы выйти из режима конвертации — /start"
	textConvertFormat = "⚠️ Формат: `<сумма> <из валюты> <в валюту>`"
	textConvertFailed = "⚠️ Ошибка конвертации. Проверь валюты или API-ключ."

	textWeatherPrompt = "🌤 Введите город, чтобы узнать погоду:"
	textWeatherFailed = "⚠️ Не удалось получить погоду. Проверь название города."

	textNotesPrompt = "📝 Заметки\n\n" +
		"Просто напиши текст, и я его запомню.\n" +
		"/list — показать заметки\n/del <номер> — удалить заметку"
	textNoteSaved     = "✅ Заметка сохранена."
	textNoNotes       = "📭 Заметок пока нет."
	textDelFormat     = "⚠️ Формат: /del <номер>"
	textNoteDeleted   = "🗑 Заметка %d удалена: %s"
	textNoteNotExists = "⚠️ Нет заметки с номером %d. Всего заметок: %d."

	textVoiceSaved       = "🎙 Голосовое сообщение сохранено. Всего: %d"
	textVoiceFetchFailed = "⚠️ Не удалось получить голосовое сообщение. Попробуй ещё раз."
	textNoVoices         = "📭 Голосовых сообщений пока нет."
	textVoicesHeader     = "🎙 Сохранённые голосовые: %d"

	textAskUsage         = "Использование: /ask <вопрос>"
	textAssistantListen  = "Слушаю. Что тебя интересует?"
	textAssistantOffline = "⚠️ Ассистент сейчас недоступен. Попробуй позже."

	textUnknownButton  = "⚠️ Неизвестная кнопка. Открой меню: /start"
	textUnknownCommand = "🤷 Неизвестная команда. Список команд: /help"
)

func helpText() string {
	var sb strings.Builder
	sb.WriteString("📖 Доступные команды:\n\n")
	for _, cmd := range Commands {
		fmt.Fprintf(&sb, "/%s - %s\n", cmd.Name, cmd.Description)
	}
	sb.WriteString("\n👉 Также можно пользоваться кнопками меню.")
	return sb.String()
}

// formatAmount prints a number in its shortest form keeping a decimal point
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatConversion(req conversionRequest, conv domain.Conversion) string {
	return fmt.Sprintf("💱 %s %s = %.2f %s\n(Курс: 1 %s = %.6f %s)",
		formatAmount(req.Amount), req.From, conv.Result, req.To,
		req.From, conv.Rate, req.To,
	)
}

func formatWeather(r domain.WeatherReport) string {
	return fmt.Sprintf("Погода в %s:\n%s\n🌡 Температура: %s°C (ощущается как %s°C)\n💧 Влажность: %d%%\n💨 Ветер: %s м/с",
		r.City, r.Description, formatNumber(r.TempC), formatNumber(r.FeelsLikeC), r.HumidityPct, formatNumber(r.WindSpeed),
	)
}

func formatNotes(notes []domain.Note) string {
	if len(notes) == 0 {
		return textNoNotes
	}

	var sb strings.Builder
	sb.WriteString("📝 Твои заметки:\n")
	for _, n := range notes {
		fmt.Fprintf(&sb, "\n%d. %s", n.Position, n.Text)
	}
	return sb.String()
}
