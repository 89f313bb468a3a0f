// Package weather provides current conditions for a city via the
// OpenWeatherMap API.
package weather

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/metoolok/metoolok/internal/httpx"
	"github.com/metoolok/metoolok/internal/skills"
	"go.uber.org/zap"
)

const apiBase = "https://api.openweathermap.org/data/2.5/weather"

// memory key for the city fallback when the user omits one
const lastCityKey = "last_weather_city"

// WeatherSkill fetches current conditions for a city.
type WeatherSkill struct {
	*skills.BaseSkill
	http    *httpx.Client
	baseURL string
}

// New creates the weather skill.
func New(deps skills.Deps) (skills.Skill, error) {
	if deps.HTTP == nil {
		return nil, fmt.Errorf("weather skill requires an http client")
	}
	s := &WeatherSkill{
		BaseSkill: skills.NewBaseSkill(
			"weather",
			"Provides current weather information for any city.",
			[]string{"weather", "forecast", "temperature"},
			deps.Memory,
			deps.Logger,
		),
		http:    deps.HTTP,
		baseURL: apiBase,
	}
	return s, nil
}

// CheckConfiguration requires the OpenWeatherMap API key.
func (s *WeatherSkill) CheckConfiguration() bool {
	if s.APIKey("weather") == "" {
		s.Logger().Warn("Weather API key missing from environment")
		return false
	}
	return true
}

type owmResponse struct {
	Cod     interface{} `json:"cod"`
	Message string      `json:"message"`
	Main    struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// Execute resolves the city from the input, falling back to the last
// city stored in memory, and renders the current conditions.
func (s *WeatherSkill) Execute(ctx context.Context, input string) (string, error) {
	if strings.Contains(strings.ToLower(input), "help") {
		return "💡 **Usage:** `weather London`, `weather forecast Ankara`", nil
	}

	city := s.extractCity(input)
	if city == "" {
		if remembered, ok := s.ReadFromMemory(lastCityKey, "").(string); ok {
			city = remembered
		}
	}
	if city == "" {
		return "🌍 Please specify a city (e.g., 'weather London').", nil
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", s.APIKey("weather"))
	q.Set("units", "metric")
	q.Set("lang", "en")

	var data owmResponse
	if err := s.http.GetJSON(ctx, s.baseURL+"?"+q.Encode(), &data); err != nil {
		if httpx.StatusCode(err) == 404 {
			return fmt.Sprintf("❌ City '%s' not found.", city), nil
		}
		return "", fmt.Errorf("weather lookup for %s: %w", city, err)
	}

	if len(data.Weather) == 0 {
		msg := data.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return fmt.Sprintf("⚠️ API Error: %s", msg), nil
	}

	s.SaveToMemory(lastCityKey, city)
	s.Logger().Info("Weather fetched", zap.String("city", city), zap.Float64("temp", data.Main.Temp))

	desc := capitalize(data.Weather[0].Description)
	return fmt.Sprintf(
		"### 🌤️ Weather in %s\n- **Status:** %s\n- **Temp:** %.1f°C (Feels like %.1f°C)\n- **Humidity:** %%%d",
		capitalize(city), desc, data.Main.Temp, data.Main.FeelsLike, data.Main.Humidity,
	), nil
}

// extractCity strips the trigger keywords and common filler words,
// treating the last remaining token as the city.
func (s *WeatherSkill) extractCity(input string) string {
	triggers := make(map[string]bool)
	for _, k := range s.Keywords() {
		triggers[k] = true
	}
	for _, filler := range []string{"in", "for", "the", "what", "whats", "what's", "is", "like", "today"} {
		triggers[filler] = true
	}

	var clean []string
	for _, p := range strings.Fields(input) {
		if !triggers[strings.ToLower(strings.Trim(p, "?.,!"))] {
			clean = append(clean, strings.Trim(p, "?.,!"))
		}
	}
	if len(clean) == 0 {
		return ""
	}
	return clean[len(clean)-1]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
