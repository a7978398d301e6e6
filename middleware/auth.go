package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the cookie the login handler stores the token in.
const SessionCookie = "session"

// LoginPath is where unauthenticated requests are sent, carrying the
// original path in the next parameter.
const LoginPath = "/auth/login/"

const tokenTTL = 24 * time.Hour

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies session tokens. Handlers read the
// verified user id from the gin context under "userId".
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

func (a *Authenticator) IssueToken(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// RequireAuth redirects anonymous requests to the login page with a
// next parameter and puts the user id in the context otherwise.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := a.verify(c)
		if !ok {
			c.Redirect(http.StatusFound, LoginPath+"?next="+nextParam(c.Request.URL.Path))
			c.Abort()
			return
		}
		c.Set("userId", userID)
		c.Next()
	}
}

// nextParam escapes a path for use as the next query value, keeping
// the slashes readable.
func nextParam(path string) string {
	return strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")
}

// OptionalAuth sets the user id when a valid token is present and lets
// the request through either way.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := a.verify(c); ok {
			c.Set("userId", userID)
		}
		c.Next()
	}
}

func (a *Authenticator) verify(c *gin.Context) (string, bool) {
	tokenString := a.tokenFrom(c)
	if tokenString == "" {
		return "", false
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}
	return claims.UserID, true
}

// Token sources in order: session cookie, Authorization header, token
// query parameter.
func (a *Authenticator) tokenFrom(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}
