// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// privateKey and publicKey are used for signing and verifying JWT tokens.
var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// TokenExpiry is how long issued tokens stay valid (0 => never).
	TokenExpiry time.Duration
)

// Identity is the resolved player behind a session. It is passed explicitly
// into every room command.
type Identity struct {
	PlayerID  uuid.UUID `json:"playerId"`
	Name      string    `json:"name"`
	Anonymous bool      `json:"isAnonymous"`
}

// Empty reports whether no player is attached.
func (id Identity) Empty() bool {
	return id.PlayerID == uuid.Nil
}

// parseTokenExpireTime reads the TOKEN_EXPIRE_TIME env var and sets TokenExpiry accordingly.
func parseTokenExpireTime() error {
	duration := os.Getenv("TOKEN_EXPIRE_TIME")
	if duration == "never" || duration == "0" || duration == "" {
		TokenExpiry = 0
		return nil
	}
	d, err := time.ParseDuration(duration)
	if err != nil {
		return fmt.Errorf("failed to parse token expire time: %w", err)
	}
	TokenExpiry = d
	return nil
}

// Init generates a fresh ed25519 key pair at runtime and sets the token expiration.
func Init() error {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	return parseTokenExpireTime()
}

// InitFromPath reads ed25519 private/public keys from file so tokens survive restarts.
func InitFromPath(privatePath, publicPath string) error {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return fmt.Errorf("failed to read public key file: %w", err)
	}

	privateKey = ed25519.PrivateKey(privateKeyData)
	publicKey = ed25519.PublicKey(publicKeyData)
	return parseTokenExpireTime()
}

// NewGuest issues a fresh anonymous identity. An empty name is replaced by a generated one.
func NewGuest(name string) Identity {
	if name == "" {
		name = GenerateGuestName()
	}
	return Identity{PlayerID: uuid.New(), Name: name, Anonymous: true}
}

// CreateJWT signs a token with "sub" = player id plus the display name.
func CreateJWT(id Identity) (string, error) {
	if privateKey == nil {
		return "", errors.New("auth keys not initialized")
	}
	claims := jwt.MapClaims{
		"sub":  id.PlayerID.String(),
		"name": id.Name,
		"anon": id.Anonymous,
	}
	if TokenExpiry > 0 {
		claims["exp"] = time.Now().Add(TokenExpiry).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// AuthenticateJWT verifies a token and returns the identity it carries.
func AuthenticateJWT(tokenString string) (Identity, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return Identity{}, fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("invalid jwt claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return Identity{}, fmt.Errorf("missing sub in jwt")
	}
	playerID, err := uuid.Parse(sub)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid sub in jwt: %w", err)
	}
	name, _ := claims["name"].(string)
	anon, _ := claims["anon"].(bool)

	return Identity{PlayerID: playerID, Name: name, Anonymous: anon}, nil
}
