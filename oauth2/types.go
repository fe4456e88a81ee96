// Package oauth2 holds the wire types of ITV's user auth service. The service
// follows OAuth2 naming (grant types, access/refresh tokens) with a JSON body
// instead of form encoding.
package oauth2

// GrantType represents the grant used at the ITV auth endpoints.
type GrantType string

const (
	// PasswordGrant exchanges username and password for tokens.
	// Used in: interactive login
	// Returns: access_token, refresh_token (and usually profile_token)
	PasswordGrant GrantType = "password"

	// RefreshTokenGrant exchanges a refresh token for new tokens.
	// Used in: periodic renewal and recovery after a 401
	// Returns: new access_token and a rotated refresh_token
	RefreshTokenGrant GrantType = "refresh_token"
)

// ContentScope is the only scope the streaming endpoints accept.
const ContentScope = "content"

// AuthMediaType is the Accept header value of the v2 auth API.
const AuthMediaType = "application/vnd.user.auth.v2+json"
