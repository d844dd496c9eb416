package dto

// StatsRequest carries the identifier for /api/stats and the /get form.
type StatsRequest struct {
	FileID string `form:"file_id" binding:"required"`
}
