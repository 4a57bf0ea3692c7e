package domain

import "strings"

// Session is the authenticated identity of the device user.
type Session struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	// Name is the display name; the backend keys carts by it.
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// IsAdmin reports whether the session may reach the admin panels.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// ClientName is the name used to scope cart queries. Falls back to the
// username for accounts registered without a display name.
func (s *Session) ClientName() string {
	if s == nil {
		return ""
	}
	if n := strings.TrimSpace(s.Name); n != "" {
		return n
	}
	return s.Username
}

// Home returns the landing area for the session's role.
func (s *Session) Home() string {
	if s.IsAdmin() {
		return "history"
	}
	return "catalog"
}

func trimSpace(s string) string { return strings.TrimSpace(s) }
