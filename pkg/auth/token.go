// Package auth covers password hashing, signed tokens and the request
// principal.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/shashiranjanraj/dailyfresh/config"
)

var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrTokenInvalid = errors.New("auth: token invalid")
)

const (
	audienceAPI        = "api"
	audienceActivation = "activation"

	apiTokenTTL = 24 * time.Hour
)

// Claims is the payload of an API bearer token.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// activationClaims carries the account id under "confirm".
type activationClaims struct {
	Confirm uint `json:"confirm"`
	jwt.RegisteredClaims
}

func secret() []byte {
	return []byte(config.AppKey())
}

func keyFunc(tok *jwt.Token) (interface{}, error) {
	if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
	}
	return secret(), nil
}

// IssueToken signs a bearer token for API clients.
func IssueToken(userID uint, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{audienceAPI},
			ExpiresAt: jwt.NewNumericDate(now.Add(apiTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
}

// ParseToken validates a bearer token.
func ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, keyFunc, jwt.WithAudience(audienceAPI))
	if err != nil {
		return nil, classify(err)
	}
	return claims, nil
}

// ActivationToken signs {"confirm": userID} valid for ttl.
func ActivationToken(userID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := activationClaims{
		Confirm: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{audienceActivation},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
}

// ParseActivationToken returns the account id from an activation token.
// Errors are ErrTokenExpired or ErrTokenInvalid.
func ParseActivationToken(raw string) (uint, error) {
	claims := &activationClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, keyFunc, jwt.WithAudience(audienceActivation))
	if err != nil {
		return 0, classify(err)
	}
	if claims.Confirm == 0 {
		return 0, ErrTokenInvalid
	}
	return claims.Confirm, nil
}

func classify(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
}

// MaxPasswordBytes is bcrypt's input limit; longer passwords are refused
// by HashPassword with bcrypt.ErrPasswordTooLong.
const MaxPasswordBytes = 72

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
