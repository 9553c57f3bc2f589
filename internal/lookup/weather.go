package lookup

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/fittrack/internal/errs"
)

// DefaultWeatherURL is the OpenWeatherMap API root.
const DefaultWeatherURL = "https://api.openweathermap.org"

// OpenWeather queries the OpenWeatherMap current weather endpoint.
type OpenWeather struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *zap.Logger
}

// NewOpenWeather builds a client. An empty baseURL uses DefaultWeatherURL.
func NewOpenWeather(baseURL, apiKey string, timeout time.Duration, log *zap.Logger) *OpenWeather {
	if baseURL == "" {
		baseURL = DefaultWeatherURL
	}
	return &OpenWeather{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  newClient(timeout),
		log:     log,
	}
}

type weatherResponse struct {
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
}

// Temperature returns the current temperature, or false if it cannot be determined.
func (w *OpenWeather) Temperature(ctx context.Context, city string) (float64, bool) {
	t, err := w.fetch(ctx, city)
	if err != nil {
		w.log.Warn("temperature lookup failed", zap.String("city", city), zap.Error(err))
		return 0, false
	}
	return t, true
}

func (w *OpenWeather) fetch(ctx context.Context, city string) (float64, error) {
	if w.apiKey == "" {
		return 0, fmt.Errorf("no api key: %w", errs.ErrUnavailable)
	}
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", w.apiKey)
	q.Set("units", "metric")

	var resp weatherResponse
	if err := getJSON(ctx, w.client, w.baseURL+"/data/2.5/weather?"+q.Encode(), &resp); err != nil {
		return 0, err
	}
	if resp.Main == nil || resp.Main.Temp == nil {
		return 0, fmt.Errorf("no temperature in response: %w", errs.ErrUnavailable)
	}
	return *resp.Main.Temp, nil
}
