package auth

import "golang.org/x/crypto/bcrypt"

// credentialCost is the bcrypt work factor for stored credentials.
const credentialCost = bcrypt.DefaultCost

// HashPassword derives the stored credential hash for a plaintext password.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), credentialCost)
	return string(b), err
}

// CheckPassword reports whether the candidate password matches the stored
// hash; the gate maps any mismatch to the generic authentication error.
func CheckPassword(hash, pw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
}
