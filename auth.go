package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
)

// dummyHash is a pre-computed bcrypt hash used when a login username isn't found.
// Running bcrypt against it (instead of returning early) keeps response time
// constant, preventing timing-based username enumeration.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

// userClaims is the JWT payload. Subject mirrors UserID for standard tooling.
type userClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// issueToken signs an HS256 token for userID valid for h.jwtTTL.
func (h *Handler) issueToken(userID string) (string, time.Time, error) {
	now := h.now()
	expires := now.Add(h.jwtTTL)
	claims := userClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// parseToken verifies signature, algorithm and expiry.
func (h *Handler) parseToken(raw string) (*userClaims, error) {
	claims := &userClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return h.jwtSecret, nil
	}, jwt.WithTimeFunc(h.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no user_id")
	}
	return claims, nil
}

// login verifies username/password and returns a signed session token.
// POST /api/login (public, no auth required).
func (h *Handler) login(c *gin.Context) {
	var body loginRequest
	if !bindJSON(c, &body) {
		return
	}

	u, lookupErr := h.users.ByUsername(c, body.Username)
	if lookupErr != nil && !errors.Is(lookupErr, nutrition.ErrNotFound) {
		h.writeError(c, lookupErr)
		return
	}

	// Always run bcrypt to keep response time constant regardless of whether the
	// username was found. Prevents timing-based username enumeration.
	hashToCheck := string(dummyHash)
	if lookupErr == nil {
		hashToCheck = u.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hashToCheck), []byte(body.Password))

	if lookupErr != nil || compareErr != nil {
		apiError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.respondWithToken(c, u.ID)
}

// refresh reissues a token for the already-authenticated user, provided the
// account still exists.
// POST /api/refresh
func (h *Handler) refresh(c *gin.Context) {
	userID := c.GetString("user_id")
	if _, err := h.users.ByID(c, userID); err != nil {
		if errors.Is(err, nutrition.ErrNotFound) {
			apiError(c, http.StatusUnauthorized, "invalid token")
			return
		}
		h.writeError(c, err)
		return
	}
	h.respondWithToken(c, userID)
}

func (h *Handler) respondWithToken(c *gin.Context, userID string) {
	token, expires, err := h.issueToken(userID)
	if err != nil {
		h.log.Error("sign token", zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to issue token")
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: token, UserID: userID, ExpiresAt: expires})
}

// authMiddleware validates the Bearer token and sets user_id on the context.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			apiError(c, http.StatusUnauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}

		claims, err := h.parseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			apiError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}
