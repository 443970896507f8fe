package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aluiziolira/go-price-bulletin/bulletin"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleDay serves GET /api/v1/boletin?fecha=YYYY-MM-DD.
func (s *Server) handleDay(c *gin.Context) {
	day := s.service.Today()
	if raw, ok := c.GetQuery("fecha"); ok {
		parsed, err := bulletin.ParseDate("fecha", raw)
		if err != nil {
			respondError(c, err)
			return
		}
		day = parsed
	}

	result, err := s.service.FetchDay(c.Request.Context(), day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleRange serves GET /api/v1/boletin/rango?from=...&to=....
func (s *Server) handleRange(c *gin.Context) {
	from, to, err := bulletin.ParseRange(c.Query("from"), c.Query("to"), s.cfg.MaxRangeDays)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := s.service.FetchRange(c.Request.Context(), from, to, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleParse serves POST /api/v1/boletin/parse with a multipart "file".
func (s *Server) handleParse(c *gin.Context) {
	date := c.PostForm("fecha")
	if date != "" {
		if _, err := bulletin.ParseDate("fecha", date); err != nil {
			respondError(c, err)
			return
		}
	}

	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, &bulletin.ValidationError{Field: "file", Message: "is required"})
		return
	}
	if header.Size > int64(s.cfg.MaxBodySize) {
		respondError(c, &bulletin.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("exceeds %d bytes", s.cfg.MaxBodySize),
		})
		return
	}

	f, err := header.Open()
	if err != nil {
		respondError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respondError(c, fmt.Errorf("read upload: %w", err))
		return
	}

	result, err := s.service.ParseDocument(data, date, header.Filename)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
