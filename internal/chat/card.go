package chat

import (
	"fmt"

	"github.com/i474232898/climate-chat/internal/weather"
)

// Card is the presentation view of a weather record. Temperatures are
// rounded here and nowhere earlier.
type Card struct {
	Location    string  `json:"location"`
	Country     string  `json:"country"`
	Temperature int     `json:"temperature"`
	High        int     `json:"high"`
	Low         int     `json:"low"`
	Description string  `json:"description"`
	WindSpeed   float64 `json:"windSpeedKph"`
	Humidity    float64 `json:"humidity"`
	Icon        string  `json:"icon"`
}

// NewCard builds the display card for rec, rounding temperatures to whole degrees.
func NewCard(rec weather.WeatherRecord) Card {
	return Card{
		Location:    rec.Location,
		Country:     rec.Country,
		Temperature: weather.Round(rec.Temperature),
		High:        weather.Round(rec.TempMax),
		Low:         weather.Round(rec.TempMin),
		Description: rec.Description,
		WindSpeed:   rec.WindSpeed,
		Humidity:    rec.Humidity,
		Icon:        rec.Icon(),
	}
}

// Title is the card heading, e.g. "Weather in Tokyo, JP".
func (c Card) Title() string {
	if c.Country == "" {
		return "Weather in " + c.Location
	}
	return fmt.Sprintf("Weather in %s, %s", c.Location, c.Country)
}

// String renders the card as a single line of plain text.
func (c Card) String() string {
	return fmt.Sprintf("%s: %d°C, %s. Wind: %g km/h, Humidity: %g%%, High: %d°C, Low: %d°C",
		c.Title(), c.Temperature, c.Description, c.WindSpeed, c.Humidity, c.High, c.Low)
}
