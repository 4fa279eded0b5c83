package sessions

import (
	"github.com/jrsteele09/go-auth-proxy/aad"
	"github.com/jrsteele09/go-auth-proxy/claims"
)

// Session is the per-user server-side state. Token fields are created by the
// login callback, renewed wholesale by the token guard, and destroyed only by
// logout; they are never partially populated. PendingLoginRedirect exists only
// between a login call and its callback.
type Session struct {
	ID                   string             `json:"id"`
	PendingLoginRedirect string             `json:"pendingLoginRedirect,omitempty"`
	AccessToken          string             `json:"accessToken,omitempty"`
	RefreshToken         string             `json:"refreshToken,omitempty"`
	ExpiresAt            int64              `json:"expiresAt,omitempty"` // epoch millis, 0 until first login
	UserClaims           *claims.UserClaims `json:"userClaims,omitempty"`

	// dirty tracks whether the session must be persisted. Reads never set it;
	// the store is written only on actual mutation, never per request.
	dirty bool
}

// Authenticated reports whether the session has completed a login.
func (s *Session) Authenticated() bool {
	return s.ExpiresAt != 0
}

// ApplyTokens replaces the session's token fields with a fresh exchange
// result. This is a single atomic mutation of all four fields.
func (s *Session) ApplyTokens(result *aad.Result) {
	s.AccessToken = result.AccessToken
	s.RefreshToken = result.RefreshToken
	s.ExpiresAt = result.ExpiresAt
	s.UserClaims = result.UserClaims
	s.dirty = true
}

// SetPendingRedirect records the post-login redirect target. A second login
// before the callback arrives simply overwrites the previous value.
func (s *Session) SetPendingRedirect(uri string) {
	s.PendingLoginRedirect = uri
	s.dirty = true
}

// TakePendingRedirect returns the stored post-login redirect target and
// clears it, so a retried or duplicated callback cannot reuse it.
func (s *Session) TakePendingRedirect() string {
	uri := s.PendingLoginRedirect
	if uri != "" {
		s.PendingLoginRedirect = ""
		s.dirty = true
	}
	return uri
}

// Dirty reports whether the session has unsaved mutations.
func (s *Session) Dirty() bool {
	return s.dirty
}

// MarkDirty forces the session to be persisted on the next save pass.
func (s *Session) MarkDirty() {
	s.dirty = true
}

// ClearDirty is called by stores after a successful save.
func (s *Session) ClearDirty() {
	s.dirty = false
}
