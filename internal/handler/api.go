package handler

import (
	"net/http"

	"Go_Share/internal/apperr"
	"Go_Share/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// UploadAPI handles POST /api/upload.
func (h *Handler) UploadAPI(c *gin.Context) {
	resp, err := h.receiveUpload(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StatsAPI handles /api/stats?file_id=.
func (h *Handler) StatsAPI(c *gin.Context) {
	var req dto.StatsRequest
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		h.fail(c, apperr.Wrap(err, apperr.InvalidParams, "file_id is required"))
		return
	}
	stats, err := h.svc.Stats(c.Request.Context(), req.FileID, h.requestBaseURL(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CountAPI handles /api/all.
func (h *Handler) CountAPI(c *gin.Context) {
	count, err := h.svc.Count(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CountResponse{Count: count})
}
