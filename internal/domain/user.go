package domain

import "time"

type User struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	PasswordHash          string     `json:"-"`
	FirstName             string     `json:"first_name"`
	LastName              string     `json:"last_name"`
	SpotifyAccessToken    string     `json:"-"`
	SpotifyRefreshToken   string     `json:"-"`
	SpotifyTokenExpiresAt *time.Time `json:"-"`
	CreatedAt             time.Time  `json:"created_at"`
}

// SpotifyLinked indica si la cuenta tiene tokens de Spotify guardados.
func (u User) SpotifyLinked() bool {
	return u.SpotifyAccessToken != ""
}
