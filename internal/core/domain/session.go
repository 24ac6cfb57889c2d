package domain

import (
	"fmt"
	"strings"
)

// SessionPolicy selects how a chat session identifier is derived for a page view
type SessionPolicy string

const (
	// SessionPolicyShared gives every visitor the same constant session
	SessionPolicyShared SessionPolicy = "shared"

	// SessionPolicyPage scopes sessions per reconstructed URL and per browser session cookie
	SessionPolicyPage SessionPolicy = "page"
)

const (
	// SharedSessionID is the constant identifier used under SessionPolicyShared
	SharedSessionID = "mock-session"

	// AnonymousSessionToken stands in for an absent session cookie under SessionPolicyPage
	AnonymousSessionToken = "anonymous"

	// SessionCookieName is the inbound cookie carrying the browser session token
	SessionCookieName = "sessionId"

	sessionSeparator = "--"
)

// ParseSessionPolicy validates a policy name from configuration
func ParseSessionPolicy(s string) (SessionPolicy, error) {
	switch p := SessionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case SessionPolicyShared, SessionPolicyPage:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionPolicy, s)
	}
}

// IsValid returns true if the policy is known
func (p SessionPolicy) IsValid() bool {
	return p == SessionPolicyShared || p == SessionPolicyPage
}

// DeriveSessionID returns the chat session identifier for a page view.
//
// Under SessionPolicyPage the identifier is url + "--" + token with every "/"
// removed, so it is stable for the same URL and cookie and never contains a
// slash. An empty token is replaced by AnonymousSessionToken. Any other policy
// yields SharedSessionID.
func DeriveSessionID(policy SessionPolicy, reconstructedURL, token string) string {
	if policy != SessionPolicyPage {
		return SharedSessionID
	}
	if token == "" {
		token = AnonymousSessionToken
	}
	return strings.ReplaceAll(reconstructedURL+sessionSeparator+token, "/", "")
}
