package handler

import (
	"fmt"
	"net/http"

	"Go_Share/internal/service"
	"Go_Share/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Download streams the zip artifact of /download/:file_id as an attachment.
func (h *Handler) Download(c *gin.Context) {
	dl, err := h.svc.Download(c.Request.Context(), c.Param("file_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	defer dl.Body.Close()

	name := utils.SanitizeHeaderFilename(dl.FileName)
	c.DataFromReader(http.StatusOK, dl.Size, "application/octet-stream", dl.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, name),
	})
	if len(c.Errors) > 0 {
		h.log.Warn("download interrupted", zap.String("file", name), zap.String("errors", c.Errors.String()))
	}
}

// QRCode renders the QR image of /qr/:file_id.
func (h *Handler) QRCode(c *gin.Context) {
	png, err := h.svc.QRCode(c.Request.Context(), c.Param("file_id"), h.requestBaseURL(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, service.QRContentType, png)
}
