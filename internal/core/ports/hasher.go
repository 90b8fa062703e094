package ports

// PasswordHasher abstracts the one-way credential hashing scheme away from the
// auth service.
type PasswordHasher interface {
	// Hash produces a salted digest; two calls on the same plaintext yield
	// different outputs.
	Hash(password string) (string, error)

	// Verify reports whether plaintext matches hash. A malformed or corrupt
	// hash yields false, never an error.
	Verify(password, hash string) bool
}
