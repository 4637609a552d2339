package model

// TokenAuth holds OAuth2 client-credentials settings. Any field may be empty;
// an absent auth source is represented as the zero value, never as nil.
type TokenAuth struct {
	TokenEndpoint string `json:"token_endpoint"`
	Scope         string `json:"scope"`
	ClientID      string `json:"client_id"`
	ClientSecret  string `json:"client_secret,omitempty"`
}

// IsZero reports whether no field is set.
func (a TokenAuth) IsZero() bool {
	return a.TokenEndpoint == "" && a.Scope == "" && a.ClientID == "" && a.ClientSecret == ""
}

// NeedsAuthentication reports whether a trigger using this auth must acquire
// a bearer token first.
func (a TokenAuth) NeedsAuthentication() bool {
	return a.TokenEndpoint != ""
}

// ResolveTokenAuth combines auth sources ordered from most specific to least
// specific. Each field independently takes the first non-empty value across
// the sources, so a cronjob that only overrides the scope still inherits the
// token endpoint and client credentials from its project or template.
//
// Calling this with no sources is a programming error.
func ResolveTokenAuth(sources ...TokenAuth) TokenAuth {
	if len(sources) == 0 {
		panic("model: ResolveTokenAuth called with no sources")
	}

	var effective TokenAuth
	for _, src := range sources {
		if effective.TokenEndpoint == "" {
			effective.TokenEndpoint = src.TokenEndpoint
		}
		if effective.Scope == "" {
			effective.Scope = src.Scope
		}
		if effective.ClientID == "" {
			effective.ClientID = src.ClientID
		}
		if effective.ClientSecret == "" {
			effective.ClientSecret = src.ClientSecret
		}
	}
	return effective
}
