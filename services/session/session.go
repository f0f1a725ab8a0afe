package session

import (
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"storefront-auth/constants"
)

// Service is the session establisher: given a verified identity it signs
// a JWT carrying the subject and the privileged-role flag and sets it as
// a cookie on the calling request.
type Service struct {
	secret   []byte
	lifetime time.Duration
}

func NewService(secret string, lifetime time.Duration) *Service {
	if lifetime <= 0 {
		lifetime = 8 * time.Hour
	}
	return &Service{secret: []byte(secret), lifetime: lifetime}
}

// Claims is the session token payload.
type Claims struct {
	IsAdmin bool `json:"is_admin"`
	jwt.RegisteredClaims
}

// Establish signs a session token for the account and sets the session
// cookie on the request.
func (s *Service) Establish(c *fiber.Ctx, accountUuid string, isAdmin bool) error {
	token, err := s.Sign(accountUuid, isAdmin)
	if err != nil {
		return err
	}

	s.setSecureCookie(c, constants.SessionCookieName, token, int(s.lifetime.Seconds()))
	return nil
}

// Clear expires the session cookie.
func (s *Service) Clear(c *fiber.Ctx) {
	s.setSecureCookie(c, constants.SessionCookieName, "", -1)
}

// Sign produces the HS256 session token for an identity.
func (s *Service) Sign(accountUuid string, isAdmin bool) (string, error) {
	now := time.Now()
	claims := Claims{
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountUuid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// Parse validates a session token and returns its claims.
func (s *Service) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	return claims, nil
}

// setSecureCookie matches cookie attributes to the environment; Secure is
// only set in production so local HTTP development keeps working.
func (s *Service) setSecureCookie(c *fiber.Ctx, name, value string, maxAge int) {
	isProduction := os.Getenv("APP_ENV") == "production"

	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		HTTPOnly: true,
		Secure:   isProduction,
		SameSite: "Strict",
		MaxAge:   maxAge,
		Path:     "/",
	})
}
