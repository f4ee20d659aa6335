package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tunenote/internal/service"
)

// Nombre de la cookie que transporta el token de sesión.
const sessionCookieName = "token"

const authUserIDKey = "auth_user_id"

// SessionAuthMiddleware valida la cookie de sesión y guarda la identidad en
// el contexto. Corta la cadena con 401 ante cualquier token ausente o inválido.
func SessionAuthMiddleware(sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessions == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "sessions not configured"})
			c.Abort()
			return
		}

		token, err := c.Cookie(sessionCookieName)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			c.Abort()
			return
		}

		userID, err := sessions.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			c.Abort()
			return
		}

		c.Set(authUserIDKey, userID)
		c.Next()
	}
}

// GetAuthUserID obtiene la identidad autenticada desde el contexto.
func GetAuthUserID(c *gin.Context) (string, bool) {
	val, ok := c.Get(authUserIDKey)
	if !ok {
		return "", false
	}
	userID, ok := val.(string)
	return userID, ok && userID != ""
}
