// Package service defines interfaces for stateless domain capabilities whose
// implementations live in the infrastructure layer.
package service

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)

	// Check reports whether password matches hash.
	Check(password, hash string) bool
}
