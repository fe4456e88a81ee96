package oauth2

// LoginRequest is the JSON body POSTed to the auth endpoint.
type LoginRequest struct {
	// GrantType is always PasswordGrant for a login.
	GrantType GrantType `json:"grant_type"`

	// Nonce is a random per-request value.
	Nonce string `json:"nonce"`

	// Username is the account e-mail address.
	Username string `json:"username"`

	// Password is sent as-is over TLS and never persisted.
	Password string `json:"password"`

	// Scope requested for the tokens. Example: "content"
	Scope string `json:"scope"`
}

// NewLoginRequest builds a password grant request for the content scope.
func NewLoginRequest(username, password, nonce string) LoginRequest {
	return LoginRequest{
		GrantType: PasswordGrant,
		Nonce:     nonce,
		Username:  username,
		Password:  password,
		Scope:     ContentScope,
	}
}
