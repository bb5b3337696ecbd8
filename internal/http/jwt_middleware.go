package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"distrust-bot/internal/service"
)

const authClaimsKey = "auth_claims"

// JWTAuthMiddleware valida el token del adaptador y guarda los claims en el contexto.
// Para /events también acepta ?access_token= porque los clientes websocket de
// navegador no pueden mandar headers.
func JWTAuthMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
			c.Abort()
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" && c.Request.URL.Path == "/events" {
			token = strings.TrimSpace(c.Query("access_token"))
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		claims, err := jwtSvc.ParseAdapterToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// GetAuthClaims obtiene claims de JWT desde el contexto.
func GetAuthClaims(c *gin.Context) (service.AdapterClaims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.AdapterClaims{}, false
	}
	claims, ok := val.(service.AdapterClaims)
	return claims, ok
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}
