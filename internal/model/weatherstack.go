package model

// WeatherstackError is the error object WeatherStack embeds in an otherwise 200 response.
type WeatherstackError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}
