package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"

	"salonbook/config"
	"salonbook/models"
)

// Claims is the identity carried by a bearer token.
type Claims struct {
	Role     models.Role `json:"role"`
	Name     string      `json:"name,omitempty"`
	Email    string      `json:"email,omitempty"`
	MasterID string      `json:"masterId,omitempty"`
	jwt.StandardClaims
}

// Caller converts the claims to the request identity.
func (c *Claims) Caller() models.Caller {
	return models.Caller{
		UserID:   c.Subject,
		Role:     c.Role,
		Name:     c.Name,
		Email:    c.Email,
		MasterID: c.MasterID,
	}
}

var secretOverride []byte

// SetJWTSecret replaces the configured signing secret. Used by tests.
func SetJWTSecret(secret string) {
	secretOverride = []byte(secret)
}

func secretKey() []byte {
	if secretOverride != nil {
		return secretOverride
	}
	if config.AppConfig.JWTSecret == "" {
		return []byte("salonbook-dev-secret")
	}
	return []byte(config.AppConfig.JWTSecret)
}

// GenerateToken creates a signed token for caller that expires after duration.
func GenerateToken(caller models.Caller, duration time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:     caller.Role,
		Name:     caller.Name,
		Email:    caller.Email,
		MasterID: caller.MasterID,
		StandardClaims: jwt.StandardClaims{
			Subject:   caller.UserID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(duration).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateToken parses and validates a token string and returns its claims.
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token does not contain a valid 'sub' claim")
	}
	if !claims.Role.Valid() || claims.Role == models.RoleSystem {
		return nil, errors.New("token does not contain a valid 'role' claim")
	}
	return claims, nil
}
