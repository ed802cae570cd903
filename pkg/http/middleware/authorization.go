package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	goJwt "github.com/golang-jwt/jwt/v5"
	"github.com/trexis-racing/roster/pkg/http"
	"github.com/trexis-racing/roster/pkg/http/jwt"
	"github.com/trexis-racing/roster/pkg/log"
)

// ClaimsKey 认证通过后 claims 存放在 c.Locals 中的键
const ClaimsKey = "claims"

// AuthorizationMiddleware 认证中间件
// 缺少令牌返回 401，令牌无效或过期返回 403
func AuthorizationMiddleware(secretKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return http.WithRepErr(c, fiber.StatusUnauthorized, http.TokenBeEmpty, c.Path())
		}

		claims, err := jwt.ParseToken(token, secretKey)
		if err != nil {
			if errors.Is(err, goJwt.ErrTokenExpired) {
				return http.WithRepErr(c, fiber.StatusForbidden, http.TokenExpired, c.Path())
			}
			log.Warnw("parse token failed", "path", c.Path(), "error", err)
			return http.WithRepErr(c, fiber.StatusForbidden, http.InvalidToken, c.Path())
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// bearerToken 按空格分割，取第二段
func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
