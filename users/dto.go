package users

import "time"

// ProfileResponse is the public view of an account.
type ProfileResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	// ImageFile is the stored avatar file name; AvatarURL is the path it is
	// served from.
	ImageFile string    `json:"image_file"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateAccountRequest carries a partial account update. Nil fields are left
// unchanged.
type UpdateAccountRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}
