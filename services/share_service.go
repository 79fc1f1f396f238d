package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cloudnest/config"
	"cloudnest/logger"
	"cloudnest/models"
	"cloudnest/repositories"
	"cloudnest/storage"
	"cloudnest/utils"

	"gorm.io/gorm"
)

const shareTokenRetries = 3

type ShareAccessOutput struct {
	Link         models.ShareLink
	File         models.File
	AbsPath      string
	ContentType  string
	DownloadName string
}

type ShareService interface {
	Create(ctx context.Context, userID uint, fileID uint, expiresAt *time.Time) (models.ShareLink, error)
	Resolve(ctx context.Context, token string) (ShareAccessOutput, error)
	List(ctx context.Context, userID uint) ([]models.ShareLink, error)
	Deactivate(ctx context.Context, userID uint, linkID uint) error
}

type shareService struct {
	files repositories.FileRepository
	links repositories.ShareLinkRepository
	cache repositories.ShareTokenCache
	store *storage.LocalStore
}

func NewShareService(
	files repositories.FileRepository,
	links repositories.ShareLinkRepository,
	cache repositories.ShareTokenCache,
	store *storage.LocalStore,
) ShareService {
	return &shareService{files: files, links: links, cache: cache, store: store}
}

func (s *shareService) Create(ctx context.Context, userID uint, fileID uint, expiresAt *time.Time) (models.ShareLink, error) {
	if _, err := s.files.GetByIDAndUser(ctx, nil, fileID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ShareLink{}, newAppError(http.StatusNotFound, "file not found", nil)
		}
		return models.ShareLink{}, newAppError(http.StatusInternalServerError, "failed to query file", err)
	}

	// token collisions are astronomically rare but the unique index makes
	// them loud; retry with a fresh token instead of failing the request
	for attempt := 0; attempt < shareTokenRetries; attempt++ {
		token, err := utils.RandomToken(config.AppConfig.Share.TokenLength)
		if err != nil {
			return models.ShareLink{}, newAppError(http.StatusInternalServerError, "failed to generate share token", err)
		}

		link := models.ShareLink{
			FileID:    fileID,
			UserID:    userID,
			Token:     token,
			ExpiresAt: expiresAt,
			IsActive:  true,
		}
		err = s.links.Create(ctx, nil, &link)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ShareLink{}, newAppError(http.StatusInternalServerError, "failed to create share link", err)
		}
	}
	return models.ShareLink{}, newAppError(http.StatusConflict, "failed to allocate a unique share token", nil)
}

// Resolve is the one anonymous read path. Missing, inactive, and dangling
// links all answer NotFound; only a link that exists but has passed its
// expiry answers Expired, so clients can render a dedicated message.
func (s *shareService) Resolve(ctx context.Context, token string) (ShareAccessOutput, error) {
	link, err := s.lookupLink(ctx, token)
	if err != nil {
		return ShareAccessOutput{}, err
	}

	if link.ExpiresAt != nil && time.Now().After(*link.ExpiresAt) {
		return ShareAccessOutput{}, newAppError(http.StatusGone, "share link expired", nil)
	}

	file, err := s.files.GetByID(ctx, nil, link.FileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShareAccessOutput{}, newAppError(http.StatusNotFound, "file not found", nil)
		}
		return ShareAccessOutput{}, newAppError(http.StatusInternalServerError, "failed to query file", err)
	}
	if !s.store.Exists(file.Path) {
		return ShareAccessOutput{}, newAppError(http.StatusNotFound, "file not found", nil)
	}

	contentType := file.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return ShareAccessOutput{
		Link:         link,
		File:         file,
		AbsPath:      s.store.Abs(file.Path),
		ContentType:  contentType,
		DownloadName: file.OriginalName,
	}, nil
}

func (s *shareService) lookupLink(ctx context.Context, token string) (models.ShareLink, error) {
	if cached, ok, err := s.cache.Get(ctx, token); err != nil {
		logger.Debugf("share token cache get: %v", err)
	} else if ok && cached.IsActive {
		return cached, nil
	}

	link, err := s.links.GetActiveByToken(ctx, nil, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ShareLink{}, newAppError(http.StatusNotFound, "share link not found", nil)
		}
		return models.ShareLink{}, newAppError(http.StatusInternalServerError, "failed to query share link", err)
	}

	ttl := time.Duration(config.AppConfig.Share.CacheTTL) * time.Second
	if link.ExpiresAt != nil {
		if remaining := time.Until(*link.ExpiresAt); remaining < ttl {
			ttl = remaining
		}
	}
	if err := s.cache.Set(ctx, link, ttl); err != nil {
		logger.Debugf("share token cache set: %v", err)
	}
	return link, nil
}

func (s *shareService) List(ctx context.Context, userID uint) ([]models.ShareLink, error) {
	links, err := s.links.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "failed to list share links", err)
	}
	return links, nil
}

// Deactivate is idempotent: flipping an already-inactive link succeeds.
func (s *shareService) Deactivate(ctx context.Context, userID uint, linkID uint) error {
	link, err := s.links.GetByIDAndUser(ctx, nil, linkID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newAppError(http.StatusNotFound, "share link not found", nil)
		}
		return newAppError(http.StatusInternalServerError, "failed to query share link", err)
	}

	if err := s.links.DeactivateByID(ctx, nil, link.ID); err != nil {
		return newAppError(http.StatusInternalServerError, "failed to deactivate share link", err)
	}
	if err := s.cache.Invalidate(ctx, link.Token); err != nil {
		logger.Debugf("share token cache invalidate: %v", err)
	}
	return nil
}
