package domain

// Session is the client-side authentication state.
// Token is set iff Identity is set.
type Session struct {
	Identity *Identity
	Token    string
}

// IsAuthenticated reports whether the session carries an identity.
func (s Session) IsAuthenticated() bool {
	return s.Identity != nil
}
