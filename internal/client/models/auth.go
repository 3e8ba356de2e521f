package models

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is what the server returns on a successful login. Only Token
// is trusted; the rest is informational and may be absent.
type LoginResponse struct {
	Token  string `json:"token"`
	User   *User  `json:"user,omitempty"`
	RoleID int64  `json:"role_id,omitempty"`
}
