package model

import "time"

// FileRecord tracks one uploaded file and its zip artifact.
type FileRecord struct {
	ID string `gorm:"column:file_id;primaryKey;size:20" json:"file_id"`

	// Location is the pre-zip path; the artifact on disk is Location + ".zip".
	Location string `gorm:"column:file_location;type:text;not null" json:"file_location"`
	Folder   string `gorm:"column:file_folder;type:text;not null" json:"file_folder"`
	Name     string `gorm:"column:file_name;type:text;not null" json:"file_name"`

	Views int `gorm:"column:views;not null;default:0" json:"views"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName returns the database table name.
func (FileRecord) TableName() string {
	return "files"
}

// ArtifactName is the object name of the zip artifact.
func (r *FileRecord) ArtifactName() string {
	return r.Name + ".zip"
}
