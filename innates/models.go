package innates

import "time"

// Innate is a user-owned piece of text content. OwnerID is always the
// owning user's foreign-key id; the owner's username is joined in for
// display only.
type Innate struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	Innated       string    `json:"innated"`
	OwnerID       int       `json:"owner_id"`
	OwnerUsername string    `json:"owner_username"`
	CreatedAt     time.Time `json:"created_at"`
}
