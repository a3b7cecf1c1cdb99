package auth

import "golang.org/x/crypto/bcrypt"

const passwordHashCost = 12

// HashPassword returns a bcrypt hash of the plaintext. The output embeds its
// own salt and cost, so verification needs no extra state.
func HashPassword(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plaintext matches the stored hash. A
// malformed stored hash counts as a mismatch, never as a skipped check.
func VerifyPassword(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
