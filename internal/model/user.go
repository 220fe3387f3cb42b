package model

import "time"

// OnlineUser is a presence entry for one live connection. Entries are held in
// memory only and live exactly as long as the connection does.
type OnlineUser struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

// UsersOnline is the roster payload broadcast whenever presence changes.
type UsersOnline struct {
	Users []OnlineUser `json:"users"`
	Count int          `json:"count"`
}

// ErrorPayload is the private error event sent to a single connection.
type ErrorPayload struct {
	Message string `json:"message"`
}
