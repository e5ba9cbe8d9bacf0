package models

import "time"

type SessionState string

const (
	StateIdle          SessionState = "idle"
	StateAwaitingAudio SessionState = "awaiting_audio"
	StateAwaitingImage SessionState = "awaiting_image"
	StateAwaitingText  SessionState = "awaiting_text"
	StateAwaitingTitle SessionState = "awaiting_title"
)

type Session struct {
	OwnerID   int64
	State     SessionState
	ExpiresAt time.Time
}
