package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hrcore/talent-match/internal/core/domain"
	"github.com/hrcore/talent-match/internal/core/ports"
)

// UploadResumeUseCase stores a resume binary and registers it for the owner.
// Only the formats the extraction pipeline understands are accepted.
type UploadResumeUseCase struct {
	repo    ports.HiringRepository
	storage ports.ObjectStorage
}

func NewUploadResumeUseCase(repo ports.HiringRepository, storage ports.ObjectStorage) *UploadResumeUseCase {
	return &UploadResumeUseCase{
		repo:    repo,
		storage: storage,
	}
}

func (uc *UploadResumeUseCase) Upload(
	ctx context.Context,
	ownerID, filename string,
	size int64,
	body io.Reader,
) (*domain.Resume, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload resume", errors.New("owner id is required"))
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx":
	default:
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "upload resume",
			fmt.Errorf("only pdf and docx resumes are accepted, got %q", filename))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save resume file: %w", err)
	}

	resume := &domain.Resume{
		ID:         id,
		OwnerID:    ownerID,
		Filename:   filename,
		FileURL:    storageKey,
		FileSize:   size,
		UploadedAt: time.Now().UTC(),
	}
	if err := uc.repo.CreateResume(ctx, resume); err != nil {
		return nil, fmt.Errorf("create resume record: %w", err)
	}
	return resume, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == ".." {
		return "resume.bin"
	}
	return base
}
