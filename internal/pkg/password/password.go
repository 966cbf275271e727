// Package password hashes and checks staff account passwords.
package password

import "golang.org/x/crypto/bcrypt"

// Hash derives the stored form of a staff password.
func Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Compare checks a login attempt against the stored hash; a non-nil error
// means the password does not match.
func Compare(storedHash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plain))
}
