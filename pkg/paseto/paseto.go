package paseto

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/o1egl/paseto"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"geo-attendance/models"
)

var ErrInvalidRole = errors.New("token role does not match")

// Maker issues and validates PASETO v2 local tokens.
type Maker struct {
	v2  *paseto.V2
	key []byte
}

// NewMaker decodes the base64 secret and checks it is a 32-byte key.
func NewMaker(secret string) (*Maker, error) {
	key, err := DecodeKey(secret)
	if err != nil {
		return nil, err
	}
	return &Maker{v2: paseto.NewV2(), key: key}, nil
}

// DecodeKey accepts URL-safe, padded URL-safe and standard base64.
func DecodeKey(secret string) ([]byte, error) {
	decodedKey, err := base64.URLEncoding.DecodeString(secret)
	if err != nil {
		decodedKey, err = base64.RawURLEncoding.DecodeString(secret)
		if err != nil {
			decodedKey, err = base64.StdEncoding.DecodeString(secret)
			if err != nil {
				return nil, fmt.Errorf("failed to decode PASETO_SECRET: %w", err)
			}
		}
	}

	if len(decodedKey) != 32 {
		return nil, fmt.Errorf("PASETO_SECRET must be exactly 32 bytes after Base64 decoding, got %d bytes", len(decodedKey))
	}
	return decodedKey, nil
}

// GenerateToken signs a token for the subject valid for ttl.
func (m *Maker) GenerateToken(subjectID primitive.ObjectID, email, role string, ttl time.Duration) (string, error) {
	now := time.Now()

	token := paseto.JSONToken{
		Subject:    subjectID.Hex(),
		IssuedAt:   now,
		Expiration: now.Add(ttl),
		NotBefore:  now,
	}
	token.Set("email", email)
	token.Set("role", role)

	return m.v2.Encrypt(m.key, token, "")
}

// ValidateToken decrypts the token, checks its time claims and, when role is
// non-empty, that it was issued for that role.
func (m *Maker) ValidateToken(tokenString, role string) (*models.Claims, error) {
	var token paseto.JSONToken
	var footer string

	if err := m.v2.Decrypt(tokenString, m.key, &token, &footer); err != nil {
		return nil, fmt.Errorf("failed to decrypt paseto token: %w", err)
	}

	if err := token.Validate(); err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	subjectID, err := primitive.ObjectIDFromHex(token.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject format: %w", err)
	}

	claims := &models.Claims{
		SubjectID: subjectID,
		Email:     token.Get("email"),
		Role:      token.Get("role"),
	}
	if role != "" && claims.Role != role {
		return nil, ErrInvalidRole
	}
	return claims, nil
}
