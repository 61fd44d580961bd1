package domain

import "time"

// Tag is a labeled annotation attachable to any node. Name is the identity;
// the remaining fields are informational metadata.
type Tag struct {
	Name     string    `json:"name"`
	Comment  string    `json:"comment,omitempty"`
	UserName string    `json:"userName,omitempty"`
	Created  time.Time `json:"created"`
}
