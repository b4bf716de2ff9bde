package packets

type SignupRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Name     *string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateCurrentProfileRequest struct {
	Email string  `json:"email" binding:"required,email"`
	Name  *string `json:"name"`
}

type CreateScreenRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateScreenRequest struct {
	Name string `json:"name" binding:"required"`
}

// ReplacePlaylistRequest commits the console's whole working playlist.
type ReplacePlaylistRequest struct {
	Items []PlaylistItemRequest `json:"items" binding:"required"`
}

type PlaylistItemRequest struct {
	MediaID  int `json:"media_id" binding:"required"`
	Duration int `json:"duration"` // seconds; 0 resolves via default rule
}

// AppendPlaylistItemRequest adds one media snapshot to the end.
type AppendPlaylistItemRequest struct {
	MediaID  int `json:"media_id" binding:"required"`
	Duration int `json:"duration"`
}
