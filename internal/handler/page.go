package handler

import (
	"fmt"
	"net/http"

	"Go_Share/internal/apperr"
	"Go_Share/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

const (
	resultTypeFileInfo  = "the file info"
	resultTypeFileStats = "the file stats"
)

// IndexPage serves the upload form.
func (h *Handler) IndexPage(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{})
}

// StatsFormPage serves the stats lookup form.
func (h *Handler) StatsFormPage(c *gin.Context) {
	c.HTML(http.StatusOK, "stats.html", gin.H{})
}

// UploadPage handles the upload form submit. Errors are shown on the page, never as a status.
func (h *Handler) UploadPage(c *gin.Context) {
	resp, err := h.receiveUpload(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.renderResult(c, resultTypeFileInfo, fmt.Sprintf(
		"the file id: %s, the download url: %s, qr code: %s",
		resp.FileID, resp.DownloadURL, resp.QRCode,
	))
}

// StatsPage handles the stats form submit.
func (h *Handler) StatsPage(c *gin.Context) {
	var req dto.StatsRequest
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		h.renderError(c, apperr.Wrap(err, apperr.InvalidParams, "file_id is required"))
		return
	}
	stats, err := h.svc.Stats(c.Request.Context(), req.FileID, h.requestBaseURL(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.renderResult(c, resultTypeFileStats, fmt.Sprintf(
		"the file id: %s, the download url: %s, created at %s, the views: %d, the qr code link: %s",
		stats.FileID, stats.Link, stats.CreatedAt.Format("2006-01-02 15:04:05"), stats.Views, stats.QRCode,
	))
}

func (h *Handler) renderResult(c *gin.Context, kind, result string) {
	c.HTML(http.StatusOK, "results.html", gin.H{
		"type":   kind,
		"result": result,
	})
}

func (h *Handler) renderError(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	if code == apperr.Internal {
		h.log.Error("page request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	_ = c.Error(err)
	h.renderResult(c, code.String(), apperr.MessageOf(err))
}
