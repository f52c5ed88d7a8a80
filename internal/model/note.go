package model

// DailyNote is the freeform text kept for one calendar day.
type DailyNote struct {
	Date string `json:"date"`
	Text string `json:"text"`
}
