package services

import (
	"context"
	"errors"
	"net/http"

	"cloudnest/repositories"

	"gorm.io/gorm"
)

type StorageQuotaOutput struct {
	Used           int64  `json:"used"`
	UsedFormatted  string `json:"used_formatted"`
	Quota          int64  `json:"quota"`
	QuotaFormatted string `json:"quota_formatted"`
	Available      int64  `json:"available"`
}

type UserService interface {
	GetStorageQuota(ctx context.Context, userID uint) (StorageQuotaOutput, error)
}

type userService struct {
	users repositories.UserRepository
	files repositories.FileRepository
}

func NewUserService(users repositories.UserRepository, files repositories.FileRepository) UserService {
	return &userService{users: users, files: files}
}

func (s *userService) GetStorageQuota(ctx context.Context, userID uint) (StorageQuotaOutput, error) {
	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StorageQuotaOutput{}, newAppError(http.StatusNotFound, "user not found", nil)
		}
		return StorageQuotaOutput{}, newAppError(http.StatusInternalServerError, "failed to query user", err)
	}

	used, err := s.files.SumSizeByUser(ctx, nil, userID)
	if err != nil {
		return StorageQuotaOutput{}, newAppError(http.StatusInternalServerError, "failed to compute storage usage", err)
	}

	available := user.StorageQuota - used
	if available < 0 {
		available = 0
	}

	return StorageQuotaOutput{
		Used:           used,
		UsedFormatted:  FormatFileSize(used),
		Quota:          user.StorageQuota,
		QuotaFormatted: FormatFileSize(user.StorageQuota),
		Available:      available,
	}, nil
}
