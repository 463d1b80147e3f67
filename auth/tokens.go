package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/innate-go/apperror"
)

// Token purposes. A session token cannot be replayed as a reset token or
// vice versa; Verify checks the purpose claim along with the signature and
// expiry.
const (
	PurposeSession = "session"
	PurposeReset   = "reset"
)

// DefaultResetTTL is the reset-token lifetime used when the caller passes a
// non-positive TTL.
const DefaultResetTTL = 1800 * time.Second

// TokenService issues and verifies signed, time-limited tokens encoding a
// user identity. It is a pure function of the secret, the clock, and its
// input; there is no stored token state and no revocation.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a TokenService signing with the given secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		now:    time.Now,
	}
}

type tokenClaims struct {
	UserID  int    `json:"user_id"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Issue produces a signed token for userID with the given purpose, expiring
// ttl from now. A non-positive ttl falls back to DefaultResetTTL.
func (s *TokenService) Issue(userID int, purpose string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}
	now := s.now()
	claims := &tokenClaims{
		UserID:  userID,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "innate",
			Subject:   strconv.Itoa(userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify decodes tokenString and returns the encoded user id. Every failure
// mode (malformed token, wrong signature, expiry, wrong purpose, missing
// identity) collapses into the same AuthError so callers cannot distinguish
// the cause.
func (s *TokenService) Verify(tokenString, purpose string) (int, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil || !token.Valid || claims.Purpose != purpose || claims.UserID == 0 {
		return 0, errInvalidToken()
	}
	return claims.UserID, nil
}

func errInvalidToken() error {
	return apperror.NewAuthError("token is invalid or expired", nil)
}
