package api

import (
	"errors"
	"net/http"

	"github.com/aluiziolira/go-price-bulletin/bulletin"
	"github.com/aluiziolira/go-price-bulletin/pdftext"
	"github.com/aluiziolira/go-price-bulletin/scraper"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) (int, string) {
	var validation *bulletin.ValidationError
	var fetch *bulletin.FetchError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, pdftext.ErrNotPDF):
		return http.StatusBadRequest, "document is not a PDF"
	case scraper.IsNotFound(err):
		return http.StatusNotFound, "bulletin not found"
	case errors.As(err, &fetch):
		return http.StatusBadGateway, "bulletin download failed"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func respondError(c *gin.Context, err error) {
	status, message := statusFor(err)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   true,
		Message: message,
		Details: err.Error(),
	})
}
