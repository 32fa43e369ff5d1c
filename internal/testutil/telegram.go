package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tele "gopkg.in/telebot.v3"
)

// TestBotToken is the token used by bots created with FakeTelegram
const TestBotToken = "test-token"

// TelegramCall is one recorded Bot API request
type TelegramCall struct {
	Method string
	Params map[string]string
}

// FakeTelegram is an httptest Bot API server that records requests
type FakeTelegram struct {
	Server *httptest.Server

	mu    sync.Mutex
	calls []TelegramCall
	files map[string][]byte
}

// NewFakeTelegram starts a fake Bot API server closed at test cleanup
func NewFakeTelegram(t *testing.T) *FakeTelegram {
	t.Helper()
	f := &FakeTelegram{files: make(map[string][]byte)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// Bot returns an offline bot pointed at the fake server
func (f *FakeTelegram) Bot(t *testing.T) *tele.Bot {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{
		URL:         f.Server.URL,
		Token:       TestBotToken,
		Offline:     true,
		Synchronous: true,
	})
	if err != nil {
		t.Fatalf("create bot: %v", err)
	}
	return bot
}

// AddFile makes a file downloadable by id
func (f *FakeTelegram) AddFile(fileID string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[fileID] = data
}

// Calls returns recorded requests for method, or all requests when method is empty
func (f *FakeTelegram) Calls(method string) []TelegramCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []TelegramCall
	for _, c := range f.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *FakeTelegram) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	filePrefix := "/file/bot" + TestBotToken + "/"
	if strings.HasPrefix(r.URL.Path, filePrefix) {
		f.serveFile(w, strings.TrimPrefix(r.URL.Path, filePrefix))
		return
	}

	method := strings.TrimPrefix(r.URL.Path, "/bot"+TestBotToken+"/")
	params := readParams(r)

	f.mu.Lock()
	f.calls = append(f.calls, TelegramCall{Method: method, Params: params})
	f.mu.Unlock()

	switch method {
	case "sendVoice":
		fmt.Fprintf(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":%s,"type":"private"},`+
			`"voice":{"file_id":"v","file_unique_id":"u","duration":1}}}`, chatID(params))
	case "sendMessage", "editMessageText":
		fmt.Fprintf(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":%s,"type":"private"}}}`, chatID(params))
	case "getFile":
		fileID := params["file_id"]
		f.mu.Lock()
		_, ok := f.files[fileID]
		f.mu.Unlock()
		if !ok {
			w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: invalid file_id"}`))
			return
		}
		fmt.Fprintf(w, `{"ok":true,"result":{"file_id":%q,"file_unique_id":"u","file_path":"voice/%s.oga"}}`, fileID, fileID)
	default:
		w.Write([]byte(`{"ok":true,"result":true}`))
	}
}

func (f *FakeTelegram) serveFile(w http.ResponseWriter, path string) {
	fileID := strings.TrimSuffix(strings.TrimPrefix(path, "voice/"), ".oga")

	f.mu.Lock()
	data, ok := f.files[fileID]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Write(data)
}

func readParams(r *http.Request) map[string]string {
	params := make(map[string]string)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			return params
		}
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				params[k] = v[0]
			}
		}
		for k, files := range r.MultipartForm.File {
			if len(files) > 0 {
				params[k] = files[0].Filename
			}
		}
		return params
	}

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return params
	}
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			params[k] = val
		default:
			b, _ := json.Marshal(val)
			params[k] = string(b)
		}
	}
	return params
}

func chatID(params map[string]string) string {
	if id := params["chat_id"]; id != "" {
		return id
	}
	return "0"
}
