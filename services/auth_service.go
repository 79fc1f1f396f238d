package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cloudnest/config"
	"cloudnest/models"
	"cloudnest/repositories"
	"cloudnest/utils"

	"gorm.io/gorm"
)

type SignupInput struct {
	Username string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

type ResetPasswordInput struct {
	Username    string
	RecoveryKey string
	Password    string
}

type AuthUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type SignupOutput struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
	// RecoveryKey is returned exactly once, at signup.
	RecoveryKey string `json:"recovery_key"`
}

type LoginOutput struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

type ProfileStats struct {
	StorageUsed      string `json:"storage_used"`
	StorageUsedBytes int64  `json:"storage_used_bytes"`
	StorageQuota     int64  `json:"storage_quota"`
	FileCount        int64  `json:"file_count"`
	FolderCount      int64  `json:"folder_count"`
	ShareLinkCount   int64  `json:"share_link_count"`
}

type ProfileOutput struct {
	ID        uint         `json:"id"`
	Username  string       `json:"username"`
	CreatedAt time.Time    `json:"created_at"`
	Stats     ProfileStats `json:"stats"`
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (SignupOutput, error)
	Login(ctx context.Context, in LoginInput) (LoginOutput, error)
	ResetPassword(ctx context.Context, in ResetPasswordInput) error
	GetProfile(ctx context.Context, userID uint) (ProfileOutput, error)
}

type authService struct {
	txManager TxManager
	users     repositories.UserRepository
	folders   repositories.FolderRepository
	files     repositories.FileRepository
	links     repositories.ShareLinkRepository
}

func NewAuthService(
	txManager TxManager,
	users repositories.UserRepository,
	folders repositories.FolderRepository,
	files repositories.FileRepository,
	links repositories.ShareLinkRepository,
) AuthService {
	return &authService{txManager: txManager, users: users, folders: folders, files: files, links: links}
}

func (s *authService) Signup(ctx context.Context, in SignupInput) (SignupOutput, error) {
	count, err := s.users.CountByUsername(ctx, in.Username)
	if err != nil {
		return SignupOutput{}, newAppError(http.StatusInternalServerError, "failed to check username", err)
	}
	if count > 0 {
		return SignupOutput{}, newAppError(http.StatusBadRequest, "username already taken", nil)
	}

	hashedPassword, err := utils.HashPassword(in.Password)
	if err != nil {
		return SignupOutput{}, newAppError(http.StatusInternalServerError, "failed to hash password", err)
	}
	recoveryKey, err := utils.GenerateRecoveryKey()
	if err != nil {
		return SignupOutput{}, newAppError(http.StatusInternalServerError, "failed to generate recovery key", err)
	}

	user := models.User{
		Username:     in.Username,
		Password:     hashedPassword,
		RecoveryKey:  recoveryKey,
		StorageQuota: config.AppConfig.Storage.DefaultUserQuota,
	}
	if err := s.users.Create(ctx, nil, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return SignupOutput{}, newAppError(http.StatusBadRequest, "username already taken", nil)
		}
		return SignupOutput{}, newAppError(http.StatusInternalServerError, "failed to create user", err)
	}

	token, err := utils.GenerateToken(user.ID, user.Username)
	if err != nil {
		return SignupOutput{}, newAppError(http.StatusInternalServerError, "failed to generate token", err)
	}

	return SignupOutput{
		Token:       token,
		User:        AuthUser{ID: user.ID, Username: user.Username},
		RecoveryKey: recoveryKey,
	}, nil
}

func (s *authService) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	user, err := s.users.GetByUsername(ctx, nil, in.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LoginOutput{}, newAppError(http.StatusUnauthorized, "invalid username or password", nil)
		}
		return LoginOutput{}, newAppError(http.StatusInternalServerError, "failed to query user", err)
	}

	if !utils.CheckPassword(in.Password, user.Password) {
		return LoginOutput{}, newAppError(http.StatusUnauthorized, "invalid username or password", nil)
	}

	token, err := utils.GenerateToken(user.ID, user.Username)
	if err != nil {
		return LoginOutput{}, newAppError(http.StatusInternalServerError, "failed to generate token", err)
	}

	return LoginOutput{
		Token: token,
		User:  AuthUser{ID: user.ID, Username: user.Username},
	}, nil
}

func (s *authService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	user, err := s.users.GetByUsername(ctx, nil, in.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newAppError(http.StatusUnauthorized, "invalid username or recovery key", nil)
		}
		return newAppError(http.StatusInternalServerError, "failed to query user", err)
	}
	if user.RecoveryKey != in.RecoveryKey {
		return newAppError(http.StatusUnauthorized, "invalid username or recovery key", nil)
	}

	hashedPassword, err := utils.HashPassword(in.Password)
	if err != nil {
		return newAppError(http.StatusInternalServerError, "failed to hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, nil, user.ID, hashedPassword); err != nil {
		return newAppError(http.StatusInternalServerError, "failed to update password", err)
	}
	return nil
}

func (s *authService) GetProfile(ctx context.Context, userID uint) (ProfileOutput, error) {
	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProfileOutput{}, newAppError(http.StatusNotFound, "user not found", nil)
		}
		return ProfileOutput{}, newAppError(http.StatusInternalServerError, "failed to query user", err)
	}

	used, err := s.files.SumSizeByUser(ctx, nil, userID)
	if err != nil {
		return ProfileOutput{}, newAppError(http.StatusInternalServerError, "failed to compute storage usage", err)
	}
	fileCount, err := s.files.CountByUser(ctx, nil, userID)
	if err != nil {
		return ProfileOutput{}, newAppError(http.StatusInternalServerError, "failed to count files", err)
	}
	folderCount, err := s.folders.CountByUser(ctx, nil, userID)
	if err != nil {
		return ProfileOutput{}, newAppError(http.StatusInternalServerError, "failed to count folders", err)
	}
	linkCount, err := s.links.CountByUser(ctx, nil, userID)
	if err != nil {
		return ProfileOutput{}, newAppError(http.StatusInternalServerError, "failed to count share links", err)
	}

	return ProfileOutput{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
		Stats: ProfileStats{
			StorageUsed:      FormatFileSize(used),
			StorageUsedBytes: used,
			StorageQuota:     user.StorageQuota,
			FileCount:        fileCount,
			FolderCount:      folderCount,
			ShareLinkCount:   linkCount,
		},
	}, nil
}
