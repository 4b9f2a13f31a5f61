package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/campus-registry/internal/observability"
)

var (
	// ErrPhotoTooLarge indicates the payload exceeded the configured limit.
	ErrPhotoTooLarge = errors.New("photo exceeds maximum allowed size")
	// ErrPhotoExtension indicates the file extension is not on the allow-list.
	ErrPhotoExtension = errors.New("photo extension not allowed")
	// ErrPhotoNotImage indicates the content is not an image.
	ErrPhotoNotImage = errors.New("photo content is not an image")
	// ErrPhotoMissing indicates the photo file is already gone from disk.
	ErrPhotoMissing = errors.New("photo file not found")
)

var allowedPhotoExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// PhotoStorage abstracts where photo files live.
type PhotoStorage interface {
	Save(ctx context.Context, name string, reader io.Reader) error
	Rename(ctx context.Context, from, to string) error
	Delete(ctx context.Context, name string) error
}

// PendingPhoto is a validated upload held under a temporary name until the
// record referencing it commits.
type PendingPhoto struct {
	// Name is the sanitized file name the photo is published under.
	Name string
	temp string
}

// PhotoService validates and stores student photographs.
type PhotoService interface {
	// Stage validates the upload and writes it next to the published
	// photos without touching any file named Name.
	Stage(ctx context.Context, file *multipart.FileHeader) (PendingPhoto, error)
	// Publish moves a staged photo to its sanitized name, replacing a file
	// of the same name.
	Publish(ctx context.Context, photo PendingPhoto) error
	// Discard drops a staged photo that will not be published.
	Discard(ctx context.Context, photo PendingPhoto)
	// Remove deletes a published photo. A file that is already gone yields
	// ErrPhotoMissing.
	Remove(ctx context.Context, name string) error
}

type photoService struct {
	storage PhotoStorage
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewPhotoService constructs a photo service limited to maxSize bytes.
func NewPhotoService(storage PhotoStorage, maxSize int64, logger zerolog.Logger) PhotoService {
	if maxSize <= 0 {
		maxSize = 16 * 1024 * 1024
	}
	return &photoService{
		storage: storage,
		logger:  logger.With().Str("component", "photo_service").Logger(),
		maxSize: maxSize,
		tracer:  otel.Tracer("github.com/noah-isme/campus-registry/internal/service/photo"),
	}
}

func (s *photoService) Stage(ctx context.Context, file *multipart.FileHeader) (PendingPhoto, error) {
	ctx, span := s.tracer.Start(ctx, "photo.stage")
	defer span.End()

	span.SetAttributes(attribute.Int64("photo.max_bytes", s.maxSize))

	start := time.Now()
	defer func() {
		observability.PhotoLatency().Observe(time.Since(start).Seconds())
	}()

	if file == nil {
		err := errors.New("photo is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return PendingPhoto{}, err
	}
	span.SetAttributes(
		attribute.String("photo.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("photo.request_size", file.Size),
	)

	if !allowedPhotoExtensions[strings.ToLower(filepath.Ext(file.Filename))] {
		return PendingPhoto{}, s.reject(span, "extension", ErrPhotoExtension)
	}

	if file.Size > s.maxSize {
		return PendingPhoto{}, s.reject(span, "size", ErrPhotoTooLarge)
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return PendingPhoto{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return PendingPhoto{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		return PendingPhoto{}, s.reject(span, "size", ErrPhotoTooLarge)
	}

	detected := mimetype.Detect(buf.Bytes())
	span.SetAttributes(attribute.String("photo.detected_mime", detected.String()))
	if !strings.HasPrefix(detected.String(), "image/") {
		return PendingPhoto{}, s.reject(span, "type", ErrPhotoNotImage)
	}

	name := sanitizeFileName(file.Filename)
	span.SetAttributes(
		attribute.String("photo.sanitized_name", name),
		attribute.Int64("photo.size_bytes", int64(buf.Len())),
	)

	photo := PendingPhoto{Name: name, temp: ".pending-" + uuid.NewString() + "-" + name}
	if err := s.storage.Save(ctx, photo.temp, bytes.NewReader(buf.Bytes())); err != nil {
		observability.PhotoUploads().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return PendingPhoto{}, err
	}

	span.SetStatus(codes.Ok, "staged")
	s.logger.Debug().Str("photo", name).Int("size_bytes", buf.Len()).Msg("photo staged")

	return photo, nil
}

func (s *photoService) Publish(ctx context.Context, photo PendingPhoto) error {
	if photo.temp == "" {
		return nil
	}
	if err := s.storage.Rename(ctx, photo.temp, photo.Name); err != nil {
		observability.PhotoUploads().WithLabelValues("storage").Inc()
		s.Discard(ctx, photo)
		return err
	}

	observability.PhotoUploads().WithLabelValues("stored").Inc()
	s.logger.Info().Str("photo", photo.Name).Msg("photo stored")
	return nil
}

func (s *photoService) Discard(ctx context.Context, photo PendingPhoto) {
	if photo.temp == "" {
		return
	}
	err := s.storage.Delete(ctx, photo.temp)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn().Err(err).Str("photo", photo.Name).Msg("failed to discard staged photo")
	}
}

func (s *photoService) reject(span trace.Span, reason string, err error) error {
	observability.PhotoUploads().WithLabelValues(reason).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, "photo rejected: "+reason)
	return err
}

func (s *photoService) Remove(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}

	err := s.storage.Delete(ctx, name)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", name, ErrPhotoMissing)
	}
	if err != nil {
		return err
	}

	s.logger.Info().Str("photo", name).Msg("photo removed")
	return nil
}

// photoFormError maps upload rejections onto form messages.
func photoFormError(err error) error {
	switch {
	case errors.Is(err, ErrPhotoExtension):
		return newFormError("Допустимые форматы фотографии: png, jpg, jpeg.")
	case errors.Is(err, ErrPhotoTooLarge):
		return newFormError("Файл фотографии слишком большой.")
	case errors.Is(err, ErrPhotoNotImage):
		return newFormError("Загруженный файл не является изображением.")
	default:
		return err
	}
}

// photoPublishWarning describes a saved record whose photo could not be
// moved into place.
func photoPublishWarning(name string) string {
	return fmt.Sprintf("Не удалось сохранить файл фотографии %q.", name)
}

// photoRemovalWarning describes a failed best-effort photo removal.
func photoRemovalWarning(name string, err error) string {
	if errors.Is(err, ErrPhotoMissing) {
		return fmt.Sprintf("Файл фотографии %q не найден на диске.", name)
	}
	return fmt.Sprintf("Не удалось удалить файл фотографии %q.", name)
}

func sanitizeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, base)
	base = strings.Trim(base, "._")
	if base == "" {
		base = fmt.Sprintf("photo-%d", time.Now().Unix())
	}
	return base + ext
}
