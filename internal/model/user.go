package model

import (
	"strconv"
	"time"
)

// NotificationToken is the renewable, time-limited address the platform
// grants in place of a raw user id once the user opts in.
type NotificationToken struct {
	Token           string `json:"token"`
	ExpiryTimestamp string `json:"expiry_timestamp"`
	Payload         string `json:"payload"`
}

// User is one consenting alert recipient. NotificationMessages is nil until
// the platform confirms a token grant; a nil or expired token means the user
// is registered but not receiving alerts.
type User struct {
	ID                   string             `json:"id"`
	NotificationMessages *NotificationToken `json:"notification_messages,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// Document is the entire persisted state. The config store replaces it
// atomically on every write; no field-level update is available.
type Document struct {
	Users     []User    `json:"users"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmptyDocument returns a fresh document stamped now. Used both for new
// deployments and as the fail-soft fallback when the store is unreachable.
func EmptyDocument() Document {
	return Document{Users: []User{}, UpdatedAt: time.Now().UTC()}
}

// TokenValid reports whether an epoch-seconds expiry timestamp is still in
// the future. A missing or unparseable timestamp is invalid, and a token at
// exactly its expiry second is already expired.
func TokenValid(expiryTimestamp string, now time.Time) bool {
	expiry, err := strconv.ParseInt(expiryTimestamp, 10, 64)
	if err != nil {
		return false
	}
	return now.Unix() < expiry
}
