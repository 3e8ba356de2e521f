package session

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload the CRM backend signs into its tokens.
type Claims struct {
	jwt.RegisteredClaims

	UserID   *int64 `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	RoleID   *int64 `json:"role_id"`
}

// Subject is who a token says the user is. It is always derived from the
// token and never stored on its own.
type Subject struct {
	UserID    int64
	Username  string
	Email     string
	RoleID    int64
	ExpiresAt time.Time
}

// payloadParser decodes segments as base64url; padded input is tolerated
// because some encoders emit it.
var payloadParser = jwt.NewParser(jwt.WithPaddingAllowed())

// parseClaims decodes the middle segment of a compact token. The header and
// signature are not looked at: verification belongs to the server.
func parseClaims(token string) (*Claims, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[1] == "" {
		return nil, false
	}

	raw, err := payloadParser.DecodeSegment(parts[1])
	if err != nil {
		return nil, false
	}

	var c Claims
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, false
	}
	if c.UserID == nil || c.RoleID == nil || c.Username == "" {
		return nil, false
	}
	return &c, true
}

// Decode returns the subject encoded in token, or false if the token is not
// a three-part token with a JSON payload carrying user_id, username and
// role_id. It never panics on malformed input.
func Decode(token string) (*Subject, bool) {
	c, ok := parseClaims(token)
	if !ok {
		return nil, false
	}
	s := &Subject{
		UserID:   *c.UserID,
		Username: c.Username,
		Email:    c.Email,
		RoleID:   *c.RoleID,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s, true
}

// Expired reports whether token is unusable at now: undecodable, without an
// exp claim, or with exp at or before now. A future nbf also counts.
func Expired(token string, now time.Time) bool {
	c, ok := parseClaims(token)
	if !ok {
		return true
	}
	v := jwt.NewValidator(
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	return v.Validate(c) != nil
}
