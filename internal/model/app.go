package model

// AppValidation contains the result of API key validation against the
// registered apps table.
type AppValidation struct {
	AppID  string
	Name   string
	Origin string
}
