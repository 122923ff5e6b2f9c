package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qs-lzh/cinema-booking/internal/auth"
	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/service/domain"
)

const (
	requestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
	claimsKey    = "claims"
	userIDKey    = "user_id"
	tokenKey     = "token"
)

func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set(requestIDKey, id)
		ctx.Header(requestIDHeader, id)
		ctx.Next()
	}
}

func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		fields := []zap.Field{
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", ctx.GetString(requestIDKey)),
		}
		if len(ctx.Errors) > 0 {
			fields = append(fields, zap.String("errors", ctx.Errors.String()))
			logger.Error("request failed", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}

// Authenticate requires a valid, unrevoked bearer token.
func Authenticate(authService domain.AuthService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		raw, ok := strings.CutPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			respondWithError(ctx, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		claims, err := authService.Authenticate(ctx.Request.Context(), raw)
		if err != nil {
			respondServiceError(ctx, err)
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			respondServiceError(ctx, err)
			return
		}

		ctx.Set(claimsKey, claims)
		ctx.Set(userIDKey, userID)
		ctx.Set(tokenKey, raw)
		ctx.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !isAdmin(ctx) {
			respondWithError(ctx, http.StatusForbidden, "Admin role required")
			return
		}
		ctx.Next()
	}
}

func currentClaims(ctx *gin.Context) *auth.Claims {
	claims, _ := ctx.Get(claimsKey)
	c, _ := claims.(*auth.Claims)
	return c
}

func currentUserID(ctx *gin.Context) uint {
	return ctx.GetUint(userIDKey)
}

func isAdmin(ctx *gin.Context) bool {
	claims := currentClaims(ctx)
	return claims != nil && claims.Role == model.RoleAdmin
}
