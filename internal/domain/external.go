package domain

// Conversion is a successful currency conversion
type Conversion struct {
	Result float64
	Rate   float64
}

// WeatherReport describes current weather in a city
type WeatherReport struct {
	City        string
	Description string
	TempC       float64
	FeelsLikeC  float64
	HumidityPct int
	WindSpeed   float64
}

// Prompt is a single chat completion request
type Prompt struct {
	System string
	User   string
}
