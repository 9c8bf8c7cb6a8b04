package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/speechpath/speechpath-server/internal/domain"
	"github.com/speechpath/speechpath-server/internal/filestore"
	"github.com/speechpath/speechpath-server/internal/repository"
)

var (
	ErrUnsupportedMediaType = errors.New("unsupported audio type")
	ErrFileTooLarge         = errors.New("file exceeds the upload size limit")
)

type AudioService struct {
	audioRepo repository.AudioFileRepository
	files     *filestore.Store
	maxBytes  int64
}

func NewAudioService(audioRepo repository.AudioFileRepository, files *filestore.Store, maxBytes int64) *AudioService {
	return &AudioService{
		audioRepo: audioRepo,
		files:     files,
		maxBytes:  maxBytes,
	}
}

type UploadInput struct {
	OriginalName string
	MimeType     string
	Duration     *float64
	Body         io.Reader
}

// Upload validates and persists one audio file: bytes to disk, metadata to
// the store. A failed metadata write removes the orphaned bytes.
func (s *AudioService) Upload(ctx context.Context, userID uuid.UUID, input UploadInput) (*domain.AudioFile, error) {
	if !domain.AllowedAudioMimeTypes[input.MimeType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, input.MimeType)
	}

	filename, path, size, err := s.files.Save(io.LimitReader(input.Body, s.maxBytes+1), input.OriginalName)
	if err != nil {
		return nil, err
	}
	if size > s.maxBytes {
		_ = s.files.Remove(path)
		return nil, ErrFileTooLarge
	}

	file := &domain.AudioFile{
		ID:           uuid.New(),
		UserID:       userID,
		Filename:     filename,
		OriginalName: input.OriginalName,
		FilePath:     path,
		FileSize:     size,
		MimeType:     input.MimeType,
		Duration:     input.Duration,
		CreatedAt:    time.Now(),
	}
	if err := s.audioRepo.Create(ctx, file); err != nil {
		_ = s.files.Remove(path)
		return nil, err
	}
	return file, nil
}

func (s *AudioService) List(ctx context.Context, userID uuid.UUID) ([]*domain.AudioFile, error) {
	return s.audioRepo.ListByUserID(ctx, userID)
}

// Get returns the file if it exists and belongs to the caller. Files owned
// by other users are reported as not found so ids do not leak.
func (s *AudioService) Get(ctx context.Context, id, userID uuid.UUID) (*domain.AudioFile, error) {
	file, err := s.audioRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if file.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return file, nil
}

// Open returns a handle on the stored bytes for streaming.
func (s *AudioService) Open(ctx context.Context, id, userID uuid.UUID) (*os.File, *domain.AudioFile, error) {
	file, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.files.Open(file.FilePath)
	if err != nil {
		return nil, nil, domain.ErrNotFound
	}
	return f, file, nil
}

// Delete removes the metadata row and the bytes on disk.
func (s *AudioService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	file, err := s.Get(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.audioRepo.Delete(ctx, id); err != nil {
		return err
	}
	return s.files.Remove(file.FilePath)
}
