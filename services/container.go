package services

import (
	"cloudnest/repositories"
	"cloudnest/storage"
)

// Container aggregates all services for handler wiring.
type Container struct {
	Auth    AuthService
	User    UserService
	Folder  FolderService
	File    FileService
	Share   ShareService
	Cleanup *CleanupService
}

func NewContainer(repos repositories.Container, store *storage.LocalStore) *Container {
	return &Container{
		Auth:    NewAuthService(repos.TxManager, repos.Users, repos.Folders, repos.Files, repos.ShareLinks),
		User:    NewUserService(repos.Users, repos.Files),
		Folder:  NewFolderService(repos.TxManager, repos.Folders, repos.Files, repos.ShareLinks, store),
		File:    NewFileService(repos.TxManager, repos.Users, repos.Folders, repos.Files, repos.ShareLinks, store),
		Share:   NewShareService(repos.Files, repos.ShareLinks, repos.ShareCache, store),
		Cleanup: NewCleanupService(repos.ShareLinks, repos.ShareCache),
	}
}
