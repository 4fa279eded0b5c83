package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteAuthLogin  = "/.auth/login"
	RouteAuthReply  = "/.auth/reply"
	RouteAuthClaims = "/.auth/claims"
	RouteAuthLogout = "/.auth/logout"
)
