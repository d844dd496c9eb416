package dto

import "time"

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	FileID      string `json:"file_id"`
	DownloadURL string `json:"download_url"`
	QRCode      string `json:"qr_code"`
}

// StatsResponse describes a stored file.
type StatsResponse struct {
	FileID    string    `json:"file_id"`
	Link      string    `json:"link"`
	Views     int       `json:"views"`
	CreatedAt time.Time `json:"created_at"`
	QRCode    string    `json:"qr_code"`
}

// CountResponse is the total number of stored files.
type CountResponse struct {
	Count int64 `json:"count"`
}

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
