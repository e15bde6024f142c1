package models

// Banner is the dismissible announcement strip on the public site.
type Banner struct {
	Text   string `json:"text"`
	Active bool   `json:"active"`
}
