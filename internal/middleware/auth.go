package middleware

import (
	"net/http"
	"strings"

	"github.com/Raghvendrath3/conceptForge/pkg/api"
	"github.com/Raghvendrath3/conceptForge/pkg/auth"
	"github.com/awslabs/aws-lambda-go-api-proxy/core"
	"go.uber.org/zap"
)

// UserIDHeader names the owner when authentication is disabled.
const UserIDHeader = "X-User-ID"

// AuthConfig configures Authenticate.
type AuthConfig struct {
	// Enabled requires a valid bearer token unless an API Gateway
	// authorizer already identified the caller.
	Enabled   bool
	Validator *auth.JWTValidator
	// DevUserID is used when auth is disabled and no header is sent.
	DevUserID string
	Logger    *zap.Logger
}

// Authenticate resolves the owner of the request and stores it on the
// context. Sources, first match wins: the Lambda authorizer context, a
// bearer token, and (with auth disabled) the X-User-ID header or the
// development user.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, status, msg := resolveUser(r, cfg)
			if user == nil {
				logger.Debug("authentication failed",
					zap.String("request_id", GetRequestIDFromRequest(r)),
					zap.String("reason", msg),
				)
				api.ErrorWithCode(w, status, msg, "UNAUTHORIZED")
				return
			}
			ctx := auth.SetUserInContext(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveUser(r *http.Request, cfg AuthConfig) (*auth.UserContext, int, string) {
	if proxyCtx, ok := core.GetAPIGatewayV2ContextFromContext(r.Context()); ok {
		if proxyCtx.Authorizer != nil && proxyCtx.Authorizer.Lambda != nil {
			if sub, ok := proxyCtx.Authorizer.Lambda["sub"].(string); ok && sub != "" {
				return &auth.UserContext{UserID: sub}, 0, ""
			}
		}
	}

	header := r.Header.Get("Authorization")
	if cfg.Enabled || (header != "" && cfg.Validator != nil) {
		if cfg.Validator == nil {
			return nil, http.StatusInternalServerError, "Authentication is not configured"
		}
		if !strings.HasPrefix(header, "Bearer ") {
			return nil, http.StatusUnauthorized, "Authentication required"
		}
		claims, err := cfg.Validator.ValidateToken(header)
		if err != nil {
			return nil, http.StatusUnauthorized, "Invalid authentication"
		}
		return auth.UserFromClaims(claims), 0, ""
	}

	if id := strings.TrimSpace(r.Header.Get(UserIDHeader)); id != "" {
		return &auth.UserContext{UserID: id}, 0, ""
	}
	if cfg.DevUserID != "" {
		return &auth.UserContext{UserID: cfg.DevUserID}, 0, ""
	}
	return nil, http.StatusUnauthorized, "Authentication required"
}
