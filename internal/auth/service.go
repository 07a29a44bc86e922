package auth

import (
	"errors"
	"fmt"
	"time"

	appErrors "github.com/fatali-fataliyev/monthly_budget/customErrors"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash plain password: %w", err)
	}
	return string(hashedPassword), nil
}

func ComparePasswords(hashedPwd string, plainPwd string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPwd), []byte(plainPwd))
	return err == nil
}

// TokenManager signs and verifies HS256 bearer tokens. The token subject is the
// user id and the token id is the session id.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration, now func() time.Time) *TokenManager {
	if now == nil {
		now = time.Now
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
	}
}

type TokenClaims struct {
	UserID    string
	SessionID string
	ExpireAt  time.Time
}

func (tm *TokenManager) Issue(userID string, sessionID string) (string, time.Time, error) {
	issuedAt := tm.now().UTC()
	expireAt := issuedAt.Add(tm.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expireAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expireAt, nil
}

func (tm *TokenManager) Verify(token string) (TokenClaims, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		message := "Invalid token, please login."
		if errors.Is(err, jwt.ErrTokenExpired) {
			message = "Your session expired, please login again."
		}
		return TokenClaims{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: message,
		}
	}

	if claims.Subject == "" || claims.ID == "" {
		return TokenClaims{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Invalid token, please login.",
		}
	}

	return TokenClaims{
		UserID:    claims.Subject,
		SessionID: claims.ID,
		ExpireAt:  claims.ExpiresAt.Time,
	}, nil
}
