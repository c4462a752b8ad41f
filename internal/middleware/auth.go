package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/odontocare/clinica-server/internal/config"
	"github.com/odontocare/clinica-server/internal/models"
	"github.com/odontocare/clinica-server/internal/scheduling"
	"github.com/odontocare/clinica-server/internal/store"
	"github.com/odontocare/clinica-server/internal/utils"
)

const identityKey = "identity"

// AuthMiddleware resolves the caller's identity: it validates the
// bearer token and loads the matching usuario, so downstream handlers
// always see the role currently on record. Any failure here is a hard
// stop before policy checks run.
func AuthMiddleware(cfg *config.Config, st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		usuario, err := st.FindUsuario(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.Unauthorized(c, "Usuario no encontrado")
			} else {
				utils.InternalServerError(c, "error resolviendo identidad")
			}
			c.Abort()
			return
		}

		// A row predating the write-time check could carry a rol outside
		// the closed set; such an identity is denied everything.
		role, ok := models.ParseRole(string(usuario.Rol))
		if !ok {
			utils.Forbidden(c, "rol de usuario desconocido")
			c.Abort()
			return
		}

		c.Set(identityKey, scheduling.Identity{UsuarioID: usuario.ID, Role: role})
		c.Next()
	}
}

// GetIdentityFromContext returns the resolved caller identity.
func GetIdentityFromContext(c *gin.Context) (scheduling.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return scheduling.Identity{}, false
	}
	identity, ok := value.(scheduling.Identity)
	return identity, ok
}
