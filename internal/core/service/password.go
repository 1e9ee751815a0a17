package service

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the work factor the user collection was populated with.
// Lowering it would silently weaken new hashes next to old ones.
const bcryptCost = 12

// BcryptHasher hashes credentials with salted bcrypt at a fixed cost.
type BcryptHasher struct{}

func NewBcryptHasher() BcryptHasher {
	return BcryptHasher{}
}

func (BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. A wrong password is a
// false return, never an error; only a malformed hash is treated as one,
// and that too collapses to false here.
func (BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
