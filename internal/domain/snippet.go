package domain

import "time"

// Snippet is a saved HTML/CSS/JS triple owned by a user.
type Snippet struct {
	ID        int64
	Username  string
	Title     string
	HTMLCode  string
	CSSCode   string
	JSCode    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
