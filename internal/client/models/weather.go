package models

// WeatherType selects the shape of the weather response.
type WeatherType string

const (
	WeatherCurrent  WeatherType = "current"
	WeatherForecast WeatherType = "forecast"
)

// Measurements arrive preformatted by the server ("24°C", "60%"), so they
// are kept as strings.
type WeatherData struct {
	Location    string         `json:"location"`
	Coordinates Coordinates    `json:"coordinates"`
	Current     CurrentWeather `json:"current"`
	Forecast    []ForecastDay  `json:"forecast"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type CurrentWeather struct {
	Temp        string  `json:"temp"`
	FeelsLike   string  `json:"feelsLike"`
	Humidity    string  `json:"humidity"`
	WindSpeed   string  `json:"windSpeed"`
	Pressure    string  `json:"pressure"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	UVIndex     *string `json:"uvIndex,omitempty"`
	Visibility  *string `json:"visibility,omitempty"`
}

type ForecastDay struct {
	Date        string  `json:"date"`
	ShortDate   string  `json:"shortDate"`
	Temp        string  `json:"temp"`
	MinTemp     *string `json:"minTemp,omitempty"`
	MaxTemp     *string `json:"maxTemp,omitempty"`
	RainChance  string  `json:"rainChance"`
	Humidity    string  `json:"humidity"`
	WindSpeed   string  `json:"windSpeed"`
	Icon        string  `json:"icon"`
	Description string  `json:"description"`
}
