package models

// Identity is the caller derived from a verified session token.
// It lives in the request context for the duration of one request.
type Identity struct {
	Email string
	// HasEmail reports whether the token carried a string email claim.
	// A missing or non-string claim leaves Email empty.
	HasEmail bool
	// Claims holds every claim decoded from the token, registered ones included.
	Claims map[string]any
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
