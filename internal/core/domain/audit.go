package domain

import "time"

// AuthEventType names an authentication-relevant occurrence.
type AuthEventType string

const (
	EventLoginSucceeded    AuthEventType = "login_succeeded"
	EventLoginFailed       AuthEventType = "login_failed"
	EventRegistered        AuthEventType = "registered"
	EventTokenRefreshed    AuthEventType = "token_refreshed"
	EventPasswordChanged   AuthEventType = "password_changed"
	EventAdminBootstrapped AuthEventType = "admin_bootstrapped"
)

// AuthEvent is one entry in the authentication audit trail.
type AuthEvent struct {
	ID         string        `json:"id" bson:"_id,omitempty"`
	Type       AuthEventType `json:"type" bson:"type"`
	Username   string        `json:"username" bson:"username"`
	IdentityID string        `json:"identity_id,omitempty" bson:"identity_id,omitempty"`
	ActorID    string        `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	Timestamp  time.Time     `json:"timestamp" bson:"timestamp"`
}
