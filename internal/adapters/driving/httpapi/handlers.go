package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/logger"
)

// formFile is the multipart field carrying the uploaded PDF.
const formFile = "file"

// multipartSlack leaves room for boundaries and part headers around the file.
const multipartSlack int64 = 1 << 20

// errorResponse is the body of every failed request.
type errorResponse struct {
	Detail string `json:"detail"`
}

// retrieveRequest asks for the passages nearest to a query.
type retrieveRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
	K         int    `json:"k"`
}

// retrieveResponse mirrors domain.GroundingContext for JSON clients.
type retrieveResponse struct {
	Context string                   `json:"context"`
	Sources []domain.SourcePreview   `json:"sources"`
	Results []domain.RetrievalResult `json:"results"`
}

type sessionsResponse struct {
	Sessions []domain.Session `json:"sessions"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) uploadPDF(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes+multipartSlack)

	header, err := c.FormFile(formFile)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond(c, http.StatusRequestEntityTooLarge, "Uploaded file is too large.")
			return
		}
		respond(c, http.StatusBadRequest, "Please upload a PDF file.")
		return
	}
	if header.Size > s.maxUploadBytes {
		respond(c, http.StatusRequestEntityTooLarge, "Uploaded file is too large.")
		return
	}

	f, err := header.Open()
	if err != nil {
		respond(c, http.StatusBadRequest, fmt.Sprintf("Failed to read upload: %v", err))
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		respond(c, http.StatusBadRequest, fmt.Sprintf("Failed to read upload: %v", err))
		return
	}

	result, err := s.ports.Ingest.Ingest(c.Request.Context(), domain.IngestRequest{
		Filename: header.Filename,
		Content:  content,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if result.SummaryErr != nil {
		logger.Warn("Session %s summary fell back to placeholder: %v", result.SessionID, result.SummaryErr)
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		respond(c, http.StatusBadRequest, "session_id is required.")
		return
	}
	for i, turn := range req.History {
		if !turn.Role.IsValid() {
			respond(c, http.StatusBadRequest, fmt.Sprintf("chat_history[%d]: unknown role %q", i, turn.Role))
			return
		}
	}

	reply, err := s.ports.Chat.Respond(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	if reply.Sources == nil {
		reply.Sources = []domain.SourcePreview{}
	}

	c.JSON(http.StatusOK, reply)
}

func (s *Server) retrieve(c *gin.Context) {
	var req retrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		respond(c, http.StatusBadRequest, "session_id is required.")
		return
	}

	grounding, err := s.ports.Retrieval.Retrieve(c.Request.Context(), req.SessionID, req.Query, req.K)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := retrieveResponse{
		Context: grounding.Context,
		Sources: grounding.Sources,
		Results: grounding.Results,
	}
	if resp.Sources == nil {
		resp.Sources = []domain.SourcePreview{}
	}
	if resp.Results == nil {
		resp.Results = []domain.RetrievalResult{}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listSessions(c *gin.Context) {
	sessions, err := s.ports.Sessions.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}
	c.JSON(http.StatusOK, sessionsResponse{Sessions: sessions})
}

func (s *Server) getSession(c *gin.Context) {
	session, err := s.ports.Sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) deleteSession(c *gin.Context) {
	if err := s.ports.Sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respond(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, errorResponse{Detail: detail})
}

func respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	respond(c, status, err.Error())
}

// StatusFor maps a domain error to the HTTP status reported for it.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrDecryption),
		errors.Is(err, domain.ErrUnreadablePDF),
		errors.Is(err, domain.ErrNoExtractableText):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrExtractorUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrGenerationProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
