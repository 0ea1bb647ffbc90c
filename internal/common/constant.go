package common

// AuthHeaderName is the HTTP header carrying the owner-session access token
// on requests to owner-scoped API routes.
const AuthHeaderName = "Authorization"

// AuthSchemePrefix is the expected prefix of the AuthHeaderName value.
const AuthSchemePrefix = "Bearer "
