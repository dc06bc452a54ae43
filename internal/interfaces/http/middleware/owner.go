package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/invoicer/backend/internal/infrastructure/logger"
	"github.com/invoicer/backend/internal/interfaces/http/dto"
)

// Owner identity constants
const (
	AuthHeaderKey    = "Authorization"
	BearerPrefix     = "Bearer "
	OwnerHeaderKey   = "X-User-ID"
	MaxOwnerIDLength = 128
)

// OwnerConfig holds configuration for the owner identity middleware
type OwnerConfig struct {
	// JWTSecret enables HS256 bearer tokens; the owner is the "sub" claim.
	// When empty the owner is read from the X-User-ID header.
	JWTSecret string
	// Issuer is checked against the "iss" claim when set
	Issuer string
	// SkipPathPrefixes are path prefixes that need no owner
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

// DefaultOwnerConfig returns the owner middleware configuration for a secret
func DefaultOwnerConfig(secret, issuer string) OwnerConfig {
	return OwnerConfig{
		JWTSecret: secret,
		Issuer:    issuer,
		SkipPathPrefixes: []string{
			"/api/v1/system",
			"/swagger",
			"/assets",
		},
	}
}

// Owner identifies the document owner of each request and stores it in the
// gin context and the request logger. Requests without an owner get a 401.
func Owner(cfg OwnerConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	parser := jwt.NewParser(ownerParserOptions(cfg)...)

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		var (
			ownerID string
			err     error
		)
		if cfg.JWTSecret != "" {
			ownerID, err = ownerFromToken(c, parser, cfg.JWTSecret)
		} else {
			ownerID, err = ownerFromHeader(c)
		}
		if err != nil {
			handleOwnerError(c, cfg.Logger, err)
			return
		}

		c.Set(logger.GinOwnerIDKey, ownerID)
		ctx, _ := logger.WithOwnerID(c.Request.Context(), logger.FromContext(c.Request.Context()), ownerID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetOwnerID returns the owner id set by Owner
func GetOwnerID(c *gin.Context) string {
	return c.GetString(logger.GinOwnerIDKey)
}

var (
	errMissingOwner = errors.New("missing owner identity")
	errBadOwner     = errors.New("invalid owner identity")
)

func ownerParserOptions(cfg OwnerConfig) []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return opts
}

func ownerFromToken(c *gin.Context, parser *jwt.Parser, secret string) (string, error) {
	authHeader := c.GetHeader(AuthHeaderKey)
	if authHeader == "" {
		return "", errMissingOwner
	}
	tokenString, ok := strings.CutPrefix(authHeader, BearerPrefix)
	if !ok || tokenString == "" {
		return "", jwt.ErrTokenMalformed
	}

	claims := &jwt.RegisteredClaims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	return validOwnerID(claims.Subject)
}

func ownerFromHeader(c *gin.Context) (string, error) {
	return validOwnerID(c.GetHeader(OwnerHeaderKey))
}

func validOwnerID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errMissingOwner
	}
	if len(id) > MaxOwnerIDLength {
		return "", errBadOwner
	}
	return id, nil
}

func handleOwnerError(c *gin.Context, log *zap.Logger, err error) {
	log.Warn("Owner identification failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
	)

	code := dto.ErrCodeUnauthorized
	message := "Authentication required"
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		code = dto.ErrCodeTokenExpired
		message = "Token has expired"
	case errors.Is(err, errMissingOwner):
	case errors.Is(err, errBadOwner):
		message = "Invalid owner identity"
	default:
		code = dto.ErrCodeTokenInvalid
		message = "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, c.GetString(logger.GinRequestIDKey)))
}
