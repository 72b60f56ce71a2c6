package model

import "encoding/json"

// WeatherRequest is the body of a create request. Notes is optional.
type WeatherRequest struct {
	Date     string  `json:"date"`
	Location string  `json:"location"`
	Notes    *string `json:"notes,omitempty"`
}

// NotesOrEmpty returns the submitted notes, or "" when they were omitted.
func (r WeatherRequest) NotesOrEmpty() string {
	if r.Notes == nil {
		return ""
	}
	return *r.Notes
}

// WeatherRecord is the stored combination of the submitted form and the provider payload.
type WeatherRecord struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Location    string          `json:"location"`
	Notes       string          `json:"notes"`
	WeatherData json.RawMessage `json:"weather_data"`
	CreatedAt   string          `json:"created_at"`
}

type CreateWeatherResponse struct {
	ID string `json:"id"`
}
