package model

import "strings"

// User is issued by the proxy on login. It never carries the password or token.
type User struct {
	Id       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// ParseStatus maps free text to a Status, defaulting to Inactive.
func ParseStatus(s string) Status {
	if strings.EqualFold(strings.TrimSpace(s), string(StatusActive)) {
		return StatusActive
	}
	return StatusInactive
}

// Member is a roster entry. Id 0 means not yet saved upstream.
type Member struct {
	Id        int    `json:"id,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	JobTitle  string `json:"jobTitle"`
	Team      string `json:"team"`
	Status    Status `json:"status"`
}

func (m Member) IsSaved() bool {
	return m.Id > 0
}

type Team struct {
	Name string `json:"name"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
