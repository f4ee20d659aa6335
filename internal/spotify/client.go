package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client define la interfaz hacia la API de Spotify.
type Client interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (TokenResponse, error)
	RecentlyPlayed(ctx context.Context, accessToken string) ([]PlayedTrack, error)
}

// TokenResponse es la respuesta del endpoint de tokens del proveedor.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// PlayedTrack es un elemento del historial de reproducción.
type PlayedTrack struct {
	Name    string
	Artists []string
}

// ErrTokenExpired indica que el access token fue rechazado por el proveedor.
var ErrTokenExpired = errors.New("spotify access token expired")

// Único scope que el servicio solicita.
const scopeRecentlyPlayed = "user-read-recently-played"

// HTTPClient implementa Client contra los endpoints reales de Spotify.
type HTTPClient struct {
	accountsURL  string
	apiURL       string
	clientID     string
	clientSecret string
	redirectURI  string
	client       *http.Client
	logger       *zap.Logger
}

// NewHTTPClient construye un cliente apuntando a las URLs configuradas.
func NewHTTPClient(accountsURL, apiURL, clientID, clientSecret, redirectURI string, logger *zap.Logger) *HTTPClient {
	if accountsURL == "" {
		accountsURL = "https://accounts.spotify.com"
	}
	if apiURL == "" {
		apiURL = "https://api.spotify.com"
	}
	return &HTTPClient{
		accountsURL:  strings.TrimRight(accountsURL, "/"),
		apiURL:       strings.TrimRight(apiURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		client:       &http.Client{Timeout: 10 * time.Second},
		logger:       logger,
	}
}

// AuthorizeURL arma la URL de autorización a la que se redirige al usuario.
func (c *HTTPClient) AuthorizeURL(state string) string {
	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("response_type", "code")
	params.Set("redirect_uri", c.redirectURI)
	params.Set("scope", scopeRecentlyPlayed)
	params.Set("state", state)
	return c.accountsURL + "/authorize?" + params.Encode()
}

// ExchangeCode intercambia el authorization code por tokens.
func (c *HTTPClient) ExchangeCode(ctx context.Context, code string) (TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)
	return c.tokenRequest(ctx, form)
}

// RefreshToken obtiene un access token nuevo usando el refresh token guardado.
func (c *HTTPClient) RefreshToken(ctx context.Context, refreshToken string) (TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return c.tokenRequest(ctx, form)
}

func (c *HTTPClient) tokenRequest(ctx context.Context, form url.Values) (TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.accountsURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return TokenResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", c.basicAuth())

	resp, err := c.client.Do(req)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		// El cuerpo de error del proveedor solo se loguea, nunca se expone.
		if c.logger != nil {
			c.logger.Warn("spotify token error",
				zap.Int("status", resp.StatusCode),
				zap.String("grant_type", form.Get("grant_type")),
				zap.ByteString("body", respBody),
			)
		}
		return TokenResponse{}, fmt.Errorf("spotify token error: status=%d", resp.StatusCode)
	}

	var tr TokenResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return TokenResponse{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if tr.AccessToken == "" {
		return TokenResponse{}, errors.New("spotify empty access token")
	}
	return tr, nil
}

// RecentlyPlayed consulta la última canción reproducida por el usuario.
func (c *HTTPClient) RecentlyPlayed(ctx context.Context, accessToken string) ([]PlayedTrack, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/v1/me/player/recently-played?limit=1", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if c.logger != nil {
			c.logger.Info("spotify access token rejected", zap.ByteString("body", respBody))
		}
		return nil, ErrTokenExpired
	}
	if resp.StatusCode >= 400 {
		if c.logger != nil {
			c.logger.Warn("spotify recently played error",
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", respBody),
			)
		}
		return nil, fmt.Errorf("spotify api error: status=%d", resp.StatusCode)
	}

	var rp recentlyPlayedResponse
	if err := json.Unmarshal(respBody, &rp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	tracks := make([]PlayedTrack, 0, len(rp.Items))
	for _, item := range rp.Items {
		track := PlayedTrack{Name: item.Track.Name}
		for _, artist := range item.Track.Artists {
			track.Artists = append(track.Artists, artist.Name)
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

func (c *HTTPClient) basicAuth() string {
	creds := c.clientID + ":" + c.clientSecret
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
}

type recentlyPlayedResponse struct {
	Items []struct {
		Track struct {
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
		} `json:"track"`
	} `json:"items"`
}
