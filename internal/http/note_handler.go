package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"tunenote/internal/domain"
	"tunenote/internal/repository"
)

// NoteHandler mantiene dependencias para endpoints de notas.
type NoteHandler struct {
	logger *zap.Logger
	notes  repository.NoteRepository
}

// NewNoteHandler crea una instancia de NoteHandler.
func NewNoteHandler(logger *zap.Logger, notes repository.NoteRepository) *NoteHandler {
	return &NoteHandler{
		logger: logger,
		notes:  notes,
	}
}

type noteRequest struct {
	Text        string `json:"text"`
	ListeningTo string `json:"listening_to"`
}

// CreateNote maneja POST /notes.
func (h *NoteHandler) CreateNote(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create note request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "text must be provided"})
		return
	}

	now := time.Now().UTC()
	note := domain.Note{
		ID:          uuid.NewString(),
		UserID:      userID,
		Text:        req.Text,
		ListeningTo: req.ListeningTo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.notes.Create(c.Request.Context(), note); err != nil {
		h.logger.Error("create note failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": note.ID}})
}

// ListNotes maneja GET /notes.
func (h *NoteHandler) ListNotes(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	notes, err := h.notes.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list notes failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	if notes == nil {
		notes = []domain.Note{}
	}

	c.JSON(http.StatusOK, gin.H{"data": notes})
}

// GetNote maneja GET /notes/:id.
func (h *NoteHandler) GetNote(c *gin.Context) {
	note, ok := h.ownedNote(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": note})
}

// UpdateNote maneja PUT /notes/:id.
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	note, ok := h.ownedNote(c)
	if !ok {
		return
	}

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update note request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "text must be provided"})
		return
	}

	note.Text = req.Text
	note.ListeningTo = req.ListeningTo
	note.UpdatedAt = time.Now().UTC()

	if err := h.notes.Update(c.Request.Context(), note); err != nil {
		h.logger.Error("update note failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": note})
}

// DeleteNote maneja DELETE /notes/:id.
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	note, ok := h.ownedNote(c)
	if !ok {
		return
	}

	if err := h.notes.Delete(c.Request.Context(), note.ID); err != nil {
		h.logger.Error("delete note failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

// ownedNote resuelve la nota del path y verifica que pertenezca al usuario
// autenticado. Una nota ajena responde 404, nunca revela su existencia.
func (h *NoteHandler) ownedNote(c *gin.Context) (domain.Note, bool) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return domain.Note{}, false
	}

	note, err := h.notes.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"message": "note not found"})
			return domain.Note{}, false
		}
		h.logger.Error("get note failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return domain.Note{}, false
	}
	if note.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"message": "note not found"})
		return domain.Note{}, false
	}

	return note, true
}
