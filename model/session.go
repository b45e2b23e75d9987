package models

// Role distinguishes the two independent identities the storefront can
// hold at the same time. They are separately issued and separately
// revocable; logging one out never touches the other.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Session is an authenticated identity represented by a bearer token.
type Session struct {
	Role  Role
	Token string
	Email string
}
