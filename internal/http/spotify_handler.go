package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tunenote/internal/service"
)

// SpotifyHandler mantiene dependencias para el enlace OAuth con Spotify.
type SpotifyHandler struct {
	logger      *zap.Logger
	spotifyServ *service.SpotifyService
	appHomeURL  string
}

// NewSpotifyHandler crea una instancia de SpotifyHandler.
func NewSpotifyHandler(logger *zap.Logger, spotifyServ *service.SpotifyService, appHomeURL string) *SpotifyHandler {
	return &SpotifyHandler{
		logger:      logger,
		spotifyServ: spotifyServ,
		appHomeURL:  appHomeURL,
	}
}

// ConnectSpotify maneja GET /users/connect-spotify.
func (h *SpotifyHandler) ConnectSpotify(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	redirectTo, err := h.spotifyServ.BeginLink(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("begin spotify link failed", zap.Error(err), zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"redirectTo": redirectTo})
}

// AuthCallback maneja GET /users/spotify-auth-callback, invocado por Spotify
// con el browser del usuario todavía autenticado en la aplicación.
func (h *SpotifyHandler) AuthCallback(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "user did not grant access"})
		return
	}

	err := h.spotifyServ.CompleteLink(c.Request.Context(), userID, code, c.Query("state"))
	if err != nil {
		if errors.Is(err, service.ErrStateInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid state"})
			return
		}
		h.logger.Error("spotify link failed", zap.Error(err), zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	c.Redirect(http.StatusFound, h.appHomeURL)
}

// ListeningTo maneja GET /users/listening-to.
func (h *SpotifyHandler) ListeningTo(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	listeningTo, err := h.spotifyServ.NowListening(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotLinked) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "spotify account not linked"})
			return
		}
		h.logger.Error("listening to failed", zap.Error(err), zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": listeningTo})
}
