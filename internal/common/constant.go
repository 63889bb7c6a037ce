package common

// Roles assigned to users. RoleAdmin grants access to cross-user
// administrative operations.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// AuthorizationHeader carries the bearer access token on inbound requests.
const AuthorizationHeader = "Authorization"
