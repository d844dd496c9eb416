package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"Go_Share/internal/apperr"
	"Go_Share/internal/dto"
	"Go_Share/internal/metrics"
	"Go_Share/internal/repo"
	"Go_Share/internal/storage"
	"Go_Share/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	msgFileTooBig   = "the file is bigger than 700MB"
	msgFileNotFound = "the file id is not exists"

	msgExtensionTooLong = "the file extension is too long"
	msgUploadTimedOut   = "the upload timed out"
)

// FileRepository is the record store FileService works against.
type FileRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, record *model.FileRecord) error
	Get(ctx context.Context, id string) (*model.FileRecord, error)
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// UploadInput is one uploaded file plus the request's declared size.
type UploadInput struct {
	Reader       io.Reader
	Filename     string
	DeclaredSize int64
	BaseURL      string
}

// Download is an opened artifact ready to stream. The caller closes Body.
type Download struct {
	Body     io.ReadCloser
	FileName string
	Size     int64
}

// FileService implements upload, stats, download, count and QR over one record
// store and one artifact store.
type FileService struct {
	files       FileRepository
	fileStore   *FileStore
	artifacts   storage.Store
	ids         *IDGenerator
	reserver    Reserver
	qr          *QREncoder
	maxFileSize int64
	log         *zap.Logger
	// uploadTimeout caps one Upload call; zero means no limit.
	uploadTimeout time.Duration
}

type Options struct {
	Files         FileRepository
	FileStore     *FileStore
	Artifacts     storage.Store
	IDs           *IDGenerator
	Reserver      Reserver
	QR            *QREncoder
	MaxFileSize   int64
	UploadTimeout time.Duration
	Logger        *zap.Logger
}

func NewFileService(opts Options) *FileService {
	if opts.Reserver == nil {
		opts.Reserver = NopReserver{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.QR == nil {
		opts.QR = NewQREncoder(0)
	}
	return &FileService{
		files:         opts.Files,
		fileStore:     opts.FileStore,
		artifacts:     opts.Artifacts,
		ids:           opts.IDs,
		reserver:      opts.Reserver,
		qr:            opts.QR,
		maxFileSize:   opts.MaxFileSize,
		uploadTimeout: opts.UploadTimeout,
		log:           opts.Logger,
	}
}

// NormalizeFileID lower-cases a client-supplied identifier.
func NormalizeFileID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// DownloadURL is the public download link of id.
func DownloadURL(baseURL, id string) string {
	return fmt.Sprintf("%s/download/%s", baseURL, id)
}

// QRURL is the public QR image link of id.
func QRURL(baseURL, id string) string {
	return fmt.Sprintf("%s/qr/%s", baseURL, id)
}

// MaxFileSize returns the upload ceiling in bytes.
func (s *FileService) MaxFileSize() int64 {
	return s.maxFileSize
}

// CheckFileSize rejects a declared request size above the ceiling.
func (s *FileService) CheckFileSize(size int64) error {
	if size > s.maxFileSize {
		return ErrFileTooBig()
	}
	return nil
}

// ErrFileTooBig is the error for an upload over the ceiling.
func ErrFileTooBig() error {
	return apperr.New(apperr.SizeLimitExceeded, msgFileTooBig)
}

func (s *FileService) allocate(ctx context.Context) (string, func(), error) {
	release := func() {}
	id, err := s.ids.Allocate(ctx, func(ctx context.Context, candidate string) (bool, error) {
		taken, err := s.files.Exists(ctx, candidate)
		if err != nil || taken {
			return taken, err
		}
		rel, ok, err := s.reserver.Reserve(ctx, candidate)
		if err != nil {
			return false, err
		}
		if !ok {
			return true, nil
		}
		release = rel
		return false, nil
	})
	if err != nil {
		return "", nil, err
	}
	return id, release, nil
}

// Upload stores the file under a fresh identifier and records it. The zip is
// staged first and only published under its artifact name once the record exists.
func (s *FileService) Upload(ctx context.Context, in UploadInput) (*dto.UploadResponse, error) {
	if err := s.CheckFileSize(in.DeclaredSize); err != nil {
		metrics.UploadsTotal.WithLabelValues("too_large").Inc()
		return nil, err
	}
	if len(FileExtension(in.Filename)) > MaxExtensionLength {
		metrics.UploadsTotal.WithLabelValues("invalid").Inc()
		return nil, apperr.New(apperr.InvalidParams, msgExtensionTooLong)
	}
	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}

	id, release, err := s.allocate(ctx)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return nil, s.uploadError(ctx, err, "failed to allocate file id")
	}
	defer release()

	staged, err := s.fileStore.Stage(ctx, in.Reader, in.Filename, id)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		s.log.Error("store upload failed", zap.String("file_id", id), zap.Error(err))
		return nil, s.uploadError(ctx, err, "failed to store file")
	}

	record := &model.FileRecord{
		ID:       id,
		Location: staged.Location,
		Folder:   staged.Folder,
		Name:     staged.Name,
	}
	if err := s.files.Create(ctx, record); err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		s.discard(staged, id)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.log.Warn("file id claimed concurrently", zap.String("file_id", id))
			return nil, apperr.Wrap(err, apperr.Conflict, "the file id was taken by another upload, try again")
		}
		return nil, apperr.Wrap(err, apperr.Internal, "failed to save file record")
	}

	if err := s.fileStore.Commit(ctx, staged); err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		s.discard(staged, id)
		cleanupCtx := context.WithoutCancel(ctx)
		if rmErr := s.artifacts.RemoveObject(cleanupCtx, record.ArtifactName()); rmErr != nil {
			s.log.Warn("remove partial artifact failed", zap.String("file_id", id), zap.Error(rmErr))
		}
		if delErr := s.files.Delete(cleanupCtx, id); delErr != nil {
			s.log.Error("remove record of unstored file failed", zap.String("file_id", id), zap.Error(delErr))
		}
		s.log.Error("publish artifact failed", zap.String("file_id", id), zap.Error(err))
		return nil, s.uploadError(ctx, err, "failed to store file")
	}

	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	if in.DeclaredSize > 0 {
		metrics.UploadBytesTotal.Add(float64(in.DeclaredSize))
	}
	s.log.Info("file uploaded",
		zap.String("file_id", id),
		zap.String("file_name", staged.Name),
		zap.Int64("declared_size", in.DeclaredSize),
	)

	return &dto.UploadResponse{
		FileID:      id,
		DownloadURL: DownloadURL(in.BaseURL, id),
		QRCode:      QRURL(in.BaseURL, id),
	}, nil
}

func (s *FileService) uploadError(ctx context.Context, err error, msg string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperr.Wrap(err, apperr.Internal, msgUploadTimedOut)
	}
	return apperr.Wrap(err, apperr.Internal, msg)
}

func (s *FileService) discard(staged *StagedFile, id string) {
	if err := s.fileStore.Discard(staged); err != nil {
		s.log.Warn("remove staged artifact failed", zap.String("file_id", id), zap.Error(err))
	}
}

func (s *FileService) lookup(ctx context.Context, id string) (*model.FileRecord, error) {
	if !IsValidFileID(id) {
		return nil, apperr.New(apperr.NotFound, msgFileNotFound)
	}
	record, err := s.files.Get(ctx, id)
	if errors.Is(err, repo.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, msgFileNotFound)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "failed to load file record")
	}
	return record, nil
}

// Stats returns the record of id with its links.
func (s *FileService) Stats(ctx context.Context, id, baseURL string) (*dto.StatsResponse, error) {
	id = NormalizeFileID(id)
	record, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.StatsResponse{
		FileID:    record.ID,
		Link:      DownloadURL(baseURL, record.ID),
		Views:     record.Views,
		CreatedAt: record.CreatedAt,
		QRCode:    QRURL(baseURL, record.ID),
	}, nil
}

// Download opens the artifact of id and counts a view.
func (s *FileService) Download(ctx context.Context, id string) (*Download, error) {
	id = NormalizeFileID(id)
	record, err := s.lookup(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			metrics.DownloadsTotal.WithLabelValues("not_found").Inc()
		}
		return nil, err
	}

	body, info, err := s.artifacts.GetObject(ctx, record.ArtifactName())
	if err != nil {
		metrics.DownloadsTotal.WithLabelValues("error").Inc()
		s.log.Error("open artifact failed", zap.String("file_id", id), zap.Error(err))
		return nil, apperr.Wrap(err, apperr.Internal, "failed to open stored file")
	}

	if err := s.files.IncrementViews(ctx, id); err != nil {
		_ = body.Close()
		metrics.DownloadsTotal.WithLabelValues("error").Inc()
		return nil, apperr.Wrap(err, apperr.Internal, "failed to count view")
	}

	metrics.DownloadsTotal.WithLabelValues("ok").Inc()
	return &Download{
		Body:     body,
		FileName: record.ArtifactName(),
		Size:     info.Size,
	}, nil
}

// QRCode renders a PNG QR code pointing at the download link of id.
func (s *FileService) QRCode(ctx context.Context, id, baseURL string) ([]byte, error) {
	id = NormalizeFileID(id)
	record, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := s.qr.Encode(DownloadURL(baseURL, record.ID))
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "failed to render qr code")
	}
	return png, nil
}

// Count returns the number of stored files.
func (s *FileService) Count(ctx context.Context) (int64, error) {
	count, err := s.files.Count(ctx)
	if err != nil {
		return 0, apperr.Wrap(err, apperr.Internal, "failed to count files")
	}
	return count, nil
}
