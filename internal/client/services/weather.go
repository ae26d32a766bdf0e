package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/agrisonic/agrisonic/internal/client/client"
	"github.com/agrisonic/agrisonic/internal/client/models"
	"github.com/agrisonic/agrisonic/internal/common"
	"golang.org/x/text/language"
)

// WeatherQuery selects a place by name, by coordinates, or both.
type WeatherQuery struct {
	Location string
	Lat      *float64
	Lon      *float64
	Lang     string
}

type WeatherClient struct {
	api Caller
}

func NewWeatherClient(api Caller) *WeatherClient {
	return &WeatherClient{api: api}
}

// Current returns the current conditions.
func (c *WeatherClient) Current(ctx context.Context, q WeatherQuery) (*models.CurrentWeather, error) {
	resp, err := c.fetch(ctx, q, models.WeatherCurrent)
	if err != nil {
		return nil, err
	}

	var data struct {
		Current *models.CurrentWeather `json:"current"`
	}
	if err := client.Decode(resp, &data); err != nil {
		return nil, fmt.Errorf("weather: %w", err)
	}
	if data.Current == nil {
		return nil, fmt.Errorf("weather: %w: no current conditions", common.ErrMalformedResponse)
	}
	return data.Current, nil
}

// Forecast returns the location, current conditions and daily forecast.
func (c *WeatherClient) Forecast(ctx context.Context, q WeatherQuery) (*models.WeatherData, error) {
	resp, err := c.fetch(ctx, q, models.WeatherForecast)
	if err != nil {
		return nil, err
	}

	var data models.WeatherData
	if err := client.Decode(resp, &data); err != nil {
		return nil, fmt.Errorf("weather forecast: %w", err)
	}
	return &data, nil
}

func (c *WeatherClient) fetch(ctx context.Context, q WeatherQuery, typ models.WeatherType) (*client.Response, error) {
	if (q.Lat == nil) != (q.Lon == nil) {
		return nil, common.NewValidationError("coordinates", "lat and lon must be given together")
	}
	if q.Lat != nil && (*q.Lat < -90 || *q.Lat > 90) {
		return nil, common.NewValidationError("lat", "must be between -90 and 90")
	}
	if q.Lon != nil && (*q.Lon < -180 || *q.Lon > 180) {
		return nil, common.NewValidationError("lon", "must be between -180 and 180")
	}

	params := url.Values{}
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	if q.Lat != nil {
		params.Set("lat", strconv.FormatFloat(*q.Lat, 'f', -1, 64))
		params.Set("lon", strconv.FormatFloat(*q.Lon, 'f', -1, 64))
	}
	params.Set("type", string(typ))
	params.Set("lang", NormalizeLanguage(q.Lang))

	return call(ctx, c.api, client.Request{Method: http.MethodGet, Path: PathWeather, Query: params}, nil)
}

// NormalizeLanguage reduces a locale to its base language code ("sw-KE"
// becomes "sw"). Empty, malformed and undetermined locales become "en".
func NormalizeLanguage(lang string) string {
	if lang == "" {
		return common.DefaultLanguage
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return common.DefaultLanguage
	}
	base, conf := tag.Base()
	if conf == language.No || base.String() == "und" {
		return common.DefaultLanguage
	}
	return base.String()
}
