package model

import "time"

type Player struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"` // 外部帳號 ID (bot user id)
	Username   string    `json:"username,omitempty"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DisplayName prefers the username, then the first name, then the id.
func (p Player) DisplayName() string {
	if p.Username != "" {
		return p.Username
	}

	if p.FirstName != "" {
		return p.FirstName
	}

	return p.ID
}
