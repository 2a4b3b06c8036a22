package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const attendeeIDKey = "attendee_id"

// IdentityClaims is the token payload minted by the identity service.
// Eligibility is decided upstream; this core only honors the flag and never
// inspects profiles itself.
type IdentityClaims struct {
	Eligible bool `json:"eligible"`
	jwt.RegisteredClaims
}

// RequireIdentity validates the bearer token asserted by the identity
// collaborator and stores the attendee id on the request context. Ineligible
// attendees are rejected at this edge so the submission core never sees them.
func RequireIdentity(secret, issuer string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		claims := &IdentityClaims{}
		parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
		if issuer != "" {
			parserOpts = append(parserOpts, jwt.WithIssuer(issuer))
		}

		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return key, nil
		}, parserOpts...)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		attendeeID := strings.TrimSpace(claims.Subject)
		if attendeeID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token missing subject"})
			return
		}
		if !claims.Eligible {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "attendee not eligible"})
			return
		}

		c.Set(attendeeIDKey, attendeeID)
		c.Next()
	}
}

// GetAttendeeID retrieves the authenticated attendee id from the context.
func GetAttendeeID(c *gin.Context) (string, bool) {
	value, exists := c.Get(attendeeIDKey)
	if !exists {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}
