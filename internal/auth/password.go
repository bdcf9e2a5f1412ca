// Package auth — password hashing utilities.
//
// STORED FORMAT: "salt,digest"
// Every user record carries its password as a short random salt and a digest,
// joined by a comma. Earlier revisions of this app computed the digest with a
// single pass of SHA-256 — fast hashes like that can be brute-forced offline
// at billions of guesses per second, so the digest here is bcrypt instead.
//
// bcrypt is a password hashing function specifically designed to be slow.
// That slowness is a security feature: it makes brute-force attacks expensive.
// The work factor is tunable via "cost" (higher = slower = harder to crack).
//
// The per-user salt is kept, and the digest still covers name+password+salt,
// so the verify-against-stored-value contract is unchanged: split the stored
// string, recompute, compare.
package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor.
//
// Cost 12 is the current recommended minimum for new applications. It takes
// roughly ~250ms on a modern server — negligible for a login, brutal for an
// attacker running billions of guesses.
const defaultCost = 12

// saltLength is the number of random alphanumeric characters in a salt.
const saltLength = 5

const saltAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// PasswordService provides salted hashing and verification.
//
// It's a struct (not free functions) so that the bcrypt cost can be injected
// in tests — using a lower cost (e.g. 4) makes tests run much faster without
// compromising the logic being tested.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost (12).
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a custom bcrypt
// cost. Use cost 4 (the minimum allowed) in tests to avoid the ~250ms
// overhead per hashing operation.
//
// Do NOT use in production — cost 4 is far too weak.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the given name and plaintext password into "salt,digest" form.
//
// A fresh random salt is generated for every call, so two users with the same
// password (or the same user signing up twice) get different stored values.
// Store the returned string directly in the database.
func (p *PasswordService) Hash(name, password string) (string, error) {
	salt, err := makeSalt()
	if err != nil {
		return "", fmt.Errorf("auth: generating salt: %w", err)
	}

	material := name + password + salt
	if len(material) > 72 {
		// bcrypt silently truncates input longer than 72 bytes.
		// We reject it explicitly so callers aren't surprised.
		return "", fmt.Errorf("auth: name and password too long to hash")
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(material), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return salt + "," + string(digest), nil
}

// Verify checks whether the given name and plaintext password match a stored
// "salt,digest" value.
//
// A malformed stored value (missing the comma separator) is a verification
// failure, not a crash — the caller sees false, never a panic.
//
// TIMING SAFETY:
// bcrypt.CompareHashAndPassword uses a constant-time comparison internally,
// so an attacker can't tell from response time how close a guess was.
func (p *PasswordService) Verify(name, password, stored string) bool {
	salt, digest, ok := strings.Cut(stored, ",")
	if !ok {
		return false
	}

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(name+password+salt))
	return err == nil
}

// makeSalt returns a short random alphanumeric salt.
//
// crypto/rand (not math/rand) — salts must be unpredictable. The rejection
// of modulo bias via rand.Int matters little at this alphabet size but
// costs nothing.
func makeSalt() (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(saltAlphabet)))
	for i := 0; i < saltLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(saltAlphabet[n.Int64()])
	}
	return b.String(), nil
}
