package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/YoshitsuguKoike/noterefiner/internal/domain/mode"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/refine"
)

// MsgInvalidBody is returned for bodies that are not the expected JSON object
const MsgInvalidBody = "Invalid request body."

type refineRequest struct {
	Note string `json:"note"`
	Mode string `json:"mode"`
}

type createNoteRequest struct {
	Original string `json:"original"`
	Refined  string `json:"refined"`
	Mode     string `json:"mode"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleRefine(c *gin.Context) {
	var req refineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgInvalidBody})
		return
	}

	output, err := s.refiner.Refine(c.Request.Context(), req.Note, req.Mode)
	if err != nil {
		s.logger.Debug("refine request failed",
			slog.String(requestIDKey, c.GetString(requestIDKey)),
			slog.String("kind", string(refine.KindOf(err))),
		)
		c.JSON(statusFor(err), gin.H{"error": publicMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"output": output})
}

func (s *Server) handleModes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"modes":   s.modes.Modes(),
		"default": mode.SessionDefault,
	})
}

func (s *Server) handleListNotes(c *gin.Context) {
	query := c.Query("q")
	notes := s.notes.Search(query)
	c.JSON(http.StatusOK, gin.H{
		"query": query,
		"notes": notes,
		"count": len(notes),
		"total": s.notes.Len(),
	})
}

func (s *Server) handleGetNote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	n, found := s.notes.Get(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Note not found."})
		return
	}
	c.JSON(http.StatusOK, n)
}

func (s *Server) handleCreateNote(c *gin.Context) {
	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgInvalidBody})
		return
	}
	if strings.TrimSpace(req.Refined) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Refined text is required."})
		return
	}

	n, err := s.notes.Create(c.Request.Context(), req.Original, req.Refined, req.Mode)
	if err != nil {
		s.logger.Error("save note failed", slog.String(requestIDKey, c.GetString(requestIDKey)), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save note."})
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (s *Server) handleDeleteNote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := s.notes.Delete(c.Request.Context(), id); err != nil {
		s.logger.Error("delete note failed", slog.String(requestIDKey, c.GetString(requestIDKey)), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete note."})
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note id."})
		return 0, false
	}
	return id, true
}

// statusFor maps a refinement error kind to an HTTP status
func statusFor(err error) int {
	switch refine.KindOf(err) {
	case refine.KindValidation:
		return http.StatusBadRequest
	case refine.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage never exposes the underlying cause
func publicMessage(err error) string {
	var rerr *refine.Error
	if errors.As(err, &rerr) {
		return rerr.Message
	}
	return refine.MsgRefineFailed
}
