package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"tunenote/internal/repository"
	"tunenote/internal/spotify"
)

// SpotifyService orquesta el enlace OAuth con Spotify y las consultas
// posteriores a la API del proveedor.
type SpotifyService struct {
	logger *zap.Logger
	users  repository.UserRepository
	client spotify.Client
	states OAuthStateStore
}

var (
	ErrStateInvalid = errors.New("oauth state invalid")
	ErrCodeMissing  = errors.New("user did not grant access")
	ErrNotLinked    = errors.New("spotify account not linked")
	ErrUpstream     = errors.New("spotify upstream error")
)

// Vigencia de un state entre el redirect y el callback.
const stateTTL = 10 * time.Minute

func NewSpotifyService(logger *zap.Logger, users repository.UserRepository, client spotify.Client, states OAuthStateStore) *SpotifyService {
	if states == nil {
		states = NewMemoryOAuthStateStore()
	}
	return &SpotifyService{
		logger: logger,
		users:  users,
		client: client,
		states: states,
	}
}

// BeginLink genera un state de un solo uso y devuelve la URL de autorización.
func (s *SpotifyService) BeginLink(_ context.Context, userID string) (string, error) {
	if s.client == nil {
		return "", errors.New("spotify service not configured")
	}
	state := uuid.NewString()
	if err := s.states.Store(state, userID, stateTTL); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return s.client.AuthorizeURL(state), nil
}

// CompleteLink valida el callback, intercambia el code por tokens y los
// persiste. La escritura de tokens es el último paso: un fallo anterior no
// deja estado parcial.
func (s *SpotifyService) CompleteLink(ctx context.Context, userID, code, state string) error {
	if s.client == nil {
		return errors.New("spotify service not configured")
	}

	storedUserID, ok, err := s.states.Consume(state)
	if err != nil {
		return fmt.Errorf("consume oauth state: %w", err)
	}
	if !ok || storedUserID != userID {
		return ErrStateInvalid
	}

	if strings.TrimSpace(code) == "" {
		return ErrCodeMissing
	}

	tokens, err := s.client.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.Error("spotify code exchange failed", zap.Error(err), zap.String("user_id", userID))
		return ErrUpstream
	}

	expiresAt := time.Now().UTC().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	if err := s.users.SetSpotifyTokens(ctx, userID, tokens.AccessToken, tokens.RefreshToken, expiresAt); err != nil {
		return fmt.Errorf("persist spotify tokens: %w", err)
	}

	s.logger.Info("spotify account linked", zap.String("user_id", userID))
	return nil
}

// NowListening devuelve la última canción reproducida como texto plano,
// renovando el access token una sola vez si el proveedor lo rechaza.
func (s *SpotifyService) NowListening(ctx context.Context, userID string) (string, error) {
	if s.client == nil {
		return "", errors.New("spotify service not configured")
	}

	tokens, err := s.users.GetSpotifyTokens(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotLinked
		}
		return "", err
	}
	if tokens.AccessToken == "" {
		return "", ErrNotLinked
	}

	items, err := s.client.RecentlyPlayed(ctx, tokens.AccessToken)
	if errors.Is(err, spotify.ErrTokenExpired) && tokens.RefreshToken != "" {
		accessToken, renewErr := s.renewAccessToken(ctx, userID, tokens)
		if renewErr != nil {
			s.logger.Error("spotify token renewal failed", zap.Error(renewErr), zap.String("user_id", userID))
			return "", ErrUpstream
		}
		items, err = s.client.RecentlyPlayed(ctx, accessToken)
	}
	if err != nil {
		s.logger.Error("spotify recently played failed", zap.Error(err), zap.String("user_id", userID))
		return "", ErrUpstream
	}

	if len(items) == 0 {
		return "", nil
	}
	return formatTrack(items[0]), nil
}

// renewAccessToken ejecuta el grant de refresh y persiste el token renovado.
// Spotify puede omitir refresh_token en la respuesta; se conserva el previo.
func (s *SpotifyService) renewAccessToken(ctx context.Context, userID string, current repository.SpotifyTokens) (string, error) {
	renewed, err := s.client.RefreshToken(ctx, current.RefreshToken)
	if err != nil {
		return "", err
	}
	refreshToken := renewed.RefreshToken
	if refreshToken == "" {
		refreshToken = current.RefreshToken
	}
	expiresAt := time.Now().UTC().Add(time.Duration(renewed.ExpiresIn) * time.Second)
	if err := s.users.SetSpotifyTokens(ctx, userID, renewed.AccessToken, refreshToken, expiresAt); err != nil {
		return "", fmt.Errorf("persist renewed tokens: %w", err)
	}
	return renewed.AccessToken, nil
}

func formatTrack(track spotify.PlayedTrack) string {
	if len(track.Artists) == 0 {
		return track.Name
	}
	return track.Name + " by " + strings.Join(track.Artists, ", ")
}
