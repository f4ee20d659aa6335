package domain

import "time"

type Note struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Text        string    `json:"text"`
	ListeningTo string    `json:"listening_to,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
