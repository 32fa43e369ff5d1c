package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jarvis/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moscowBody = `{
	"cod": 200,
	"name": "Moscow",
	"weather": [{"main": "Clear", "description": "ясно"}],
	"main": {"temp": 21.5, "feels_like": 20.9, "humidity": 40},
	"wind": {"speed": 3.2}
}`

func TestClient_Current(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		expected      domain.WeatherReport
		expectedError bool
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   moscowBody,
			expected: domain.WeatherReport{
				City:        "Москва",
				Description: "Ясно",
				TempC:       21.5,
				FeelsLikeC:  20.9,
				HumidityPct: 40,
				WindSpeed:   3.2,
			},
		},
		{
			name:          "city not found with string cod",
			status:        http.StatusNotFound,
			body:          `{"cod":"404","message":"city not found"}`,
			expectedError: true,
		},
		{
			name:          "cod mismatch on ok status",
			status:        http.StatusOK,
			body:          `{"cod":"401","message":"invalid key"}`,
			expectedError: true,
		},
		{
			name:          "no conditions",
			status:        http.StatusOK,
			body:          `{"cod":200,"weather":[],"main":{"temp":1}}`,
			expectedError: true,
		},
		{
			name:          "not json",
			status:        http.StatusBadGateway,
			body:          `<html>bad gateway</html>`,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/data/2.5/weather", r.URL.Path)
				query := r.URL.Query()
				assert.Equal(t, "Москва", query.Get("q"))
				assert.Equal(t, "key", query.Get("appid"))
				assert.Equal(t, "metric", query.Get("units"))
				assert.Equal(t, "ru", query.Get("lang"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("key", srv.URL, time.Second)
			report, err := client.Current(context.Background(), "Москва")

			if tt.expectedError {
				assert.ErrorIs(t, err, domain.ErrAdapterUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, report)
		})
	}
}

func TestClient_Current_NoKey(t *testing.T) {
	client := NewClient("", "http://127.0.0.1:1", time.Second)

	_, err := client.Current(context.Background(), "Paris")

	assert.ErrorIs(t, err, domain.ErrAdapterUnavailable)
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "ясно", expected: "Ясно"},
		{input: "небольшой ДОЖДЬ", expected: "Небольшой дождь"},
		{input: "clear sky", expected: "Clear sky"},
		{input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, capitalize(tt.input))
		})
	}
}
