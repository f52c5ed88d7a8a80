package model

// Contact is a person tasks can be assigned to.
type Contact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Color string `json:"color"`
}
