package models

// RoleAdmin is the only role a session token can carry.
const RoleAdmin = "admin"

// AdminIdentity is the single administrator allowed to log in.
type AdminIdentity struct {
	Username     string
	PasswordHash string
}
