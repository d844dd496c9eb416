package repo

import (
	"context"
	"errors"

	"Go_Share/model"

	"gorm.io/gorm"
)

var ErrRecordNotFound = errors.New("file record not found")

// FileRepo is the record store for uploaded files.
type FileRepo struct {
	db *gorm.DB
}

// NewFileRepo wraps an opened database.
func NewFileRepo(db *gorm.DB) *FileRepo {
	return &FileRepo{db: db}
}

// Exists reports whether a record with the given id is stored. The match is case-sensitive.
func (r *FileRepo) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.FileRecord{}).
		Where("file_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a record with zero views. A taken id yields gorm.ErrDuplicatedKey.
func (r *FileRepo) Create(ctx context.Context, record *model.FileRecord) error {
	record.Views = 0
	return r.db.WithContext(ctx).Create(record).Error
}

// Get loads a record by id.
func (r *FileRepo) Get(ctx context.Context, id string) (*model.FileRecord, error) {
	var record model.FileRecord
	err := r.db.WithContext(ctx).Where("file_id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// IncrementViews adds one view in place so concurrent downloads never lose a count.
func (r *FileRepo) IncrementViews(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&model.FileRecord{}).
		Where("file_id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete removes the record of id; a missing record is not an error.
func (r *FileRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("file_id = ?", id).Delete(&model.FileRecord{}).Error
}

// Count returns the number of stored records.
func (r *FileRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.FileRecord{}).Count(&count).Error
	return count, err
}

// Ping checks the database connection.
func (r *FileRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
