// Package session holds the client's record of the authenticated user
// and persists it across runs.
package session

// Session is the client's view of who is logged in. Token and Username
// are either both set or both empty; a session with only one of them is
// treated as anonymous.
type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	UserID   string `json:"user_id"`
}

// Authenticated reports whether the session carries usable credentials.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.Username != ""
}
