package models

import "time"

// Credentials maps a username to the hex SHA-256 digest of its password
type Credentials map[string]string

// Photo represents a stored photo as listed to clients
type Photo struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"-"`
}

// LoginRequest is the body of POST /api/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /api/login
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

// UploadResponse is returned by POST /api/upload
type UploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message,omitempty"`
}

// PhotosResponse is returned by GET /api/photos
type PhotosResponse struct {
	Success bool     `json:"success"`
	Photos  []*Photo `json:"photos"`
}
