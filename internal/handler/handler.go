package handler

import (
	"errors"
	"net/http"
	"strings"

	"Go_Share/internal/apperr"
	"Go_Share/internal/dto"
	"Go_Share/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the HTML pages and the JSON API over one FileService.
type Handler struct {
	svc     *service.FileService
	baseURL string
	log     *zap.Logger
}

// New creates a Handler. An empty baseURL means links are built from the request host.
func New(svc *service.FileService, baseURL string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		svc:     svc,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

func (h *Handler) requestBaseURL(c *gin.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	} else if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return scheme + "://" + c.Request.Host
}

// receiveUpload enforces the size ceiling before reading the body, then hands the
// multipart "file" field to the service.
func (h *Handler) receiveUpload(c *gin.Context) (*dto.UploadResponse, error) {
	declared := c.Request.ContentLength
	if err := h.svc.CheckFileSize(declared); err != nil {
		return nil, err
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.svc.MaxFileSize())

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, service.ErrFileTooBig()
		}
		return nil, apperr.Wrap(err, apperr.InvalidParams, "file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "failed to open uploaded file")
	}
	defer file.Close()

	return h.svc.Upload(c.Request.Context(), service.UploadInput{
		Reader:       file,
		Filename:     fileHeader.Filename,
		DeclaredSize: declared,
		BaseURL:      h.requestBaseURL(c),
	})
}

// fail writes a JSON error with the status of its category.
func (h *Handler) fail(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	if code == apperr.Internal {
		h.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(code.HTTPStatus(), dto.ErrorResponse{Detail: apperr.MessageOf(err)})
}
