package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var errInvalidSessionToken = errors.New("invalid session token")

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (handler *Handler) buildSessionToken(sessionID string) (string, error) {
	now := handler.now()
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(handler.sessionTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(handler.sessionKey)
}

func (handler *Handler) parseSessionToken(raw string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return handler.sessionKey, nil
	}, jwt.WithTimeFunc(handler.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", errInvalidSessionToken
	}
	if strings.TrimSpace(claims.SessionID) == "" {
		return "", errInvalidSessionToken
	}
	return claims.SessionID, nil
}

func (handler *Handler) sessionIDFromRequest(c *fiber.Ctx) (string, error) {
	raw := strings.TrimSpace(c.Cookies(sessionCookieName))
	if raw == "" {
		return "", errInvalidSessionToken
	}
	return handler.parseSessionToken(raw)
}

func (handler *Handler) setSessionCookie(c *fiber.Ctx, sessionID string) error {
	token, err := handler.buildSessionToken(sessionID)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  handler.cookieExpiry(),
	})
	return nil
}

func (handler *Handler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  handler.now().Add(-time.Hour),
	})
}
