package auth

import "time"

// User is the identity record. The password field only ever holds a bcrypt
// digest and is excluded from JSON serialization.
type User struct {
	ID             int       `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ImageFile      string    `json:"image_file"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
