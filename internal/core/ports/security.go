package ports

import "github.com/brokerdesk/backoffice-api/internal/pkg/token"

// PasswordHasher turns plaintext into a one-way hash and checks candidates.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}

// TokenIssuer issues and verifies signed credentials.
type TokenIssuer interface {
	IssuePair(claims token.Claims) (*token.Pair, error)
	Verify(raw string) (*token.Claims, error)
}
