package models

// Section — раздел внутри предмета.
type Section struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	Order       int    `json:"order"`
	Enabled     bool   `json:"enabled"`
	ItemCount   int    `json:"itemCount"`
}

// Subject — предмет учебного плана со вложенными разделами.
type Subject struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Icon        string    `json:"icon,omitempty"`
	Description string    `json:"description,omitempty"`
	Order       int       `json:"order"`
	Enabled     bool      `json:"enabled"`
	Color       string    `json:"color,omitempty"`
	Sections    []Section `json:"sections"`
}
