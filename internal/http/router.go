package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tunenote/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	sessions *service.SessionService,
	userH *UserHandler,
	spotifyH *SpotifyHandler,
	noteH *NoteHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging y recovery.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	authRequired := SessionAuthMiddleware(sessions)

	users := r.Group("/users")
	users.POST("", userH.CreateUser)
	users.POST("/login", userH.Login)
	users.GET("/me", authRequired, userH.Me)
	users.GET("/connect-spotify", authRequired, spotifyH.ConnectSpotify)
	users.GET("/spotify-auth-callback", authRequired, spotifyH.AuthCallback)
	users.GET("/listening-to", authRequired, spotifyH.ListeningTo)

	notes := r.Group("/notes", authRequired)
	notes.POST("", noteH.CreateNote)
	notes.GET("", noteH.ListNotes)
	notes.GET("/:id", noteH.GetNote)
	notes.PUT("/:id", noteH.UpdateNote)
	notes.DELETE("/:id", noteH.DeleteNote)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
