package model

// Category groups tasks by theme. Names are not required to be unique, but
// import matching compares by name.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DefaultCategories returns the categories seeded into an empty board.
// IDs are left empty for the caller to assign.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Travail", Color: "#3498db"},
		{Name: "Personnel", Color: "#2ecc71"},
		{Name: "Urgent", Color: "#e74c3c"},
	}
}
