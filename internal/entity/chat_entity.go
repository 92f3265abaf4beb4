package entity

import "time"

type Chat struct {
	Id        string
	CreatedAt time.Time
}

// ShortLabel is the sidebar label: "Chat " plus the last four id characters.
func (c Chat) ShortLabel() string {
	id := c.Id
	if len(id) > 4 {
		id = id[len(id)-4:]
	}
	return "Chat " + id
}
