package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cloudnest/config"

	"github.com/disintegration/imaging"
)

var thumbnailableExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
	".gif": true, ".bmp": true, ".tiff": true,
}

// IsImageFile reports whether a thumbnail can be generated for the file.
func IsImageFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return thumbnailableExtensions[ext]
}

func GenerateThumbnail(srcPath, dstPath string) error {
	cfg := config.AppConfig.Thumbnail

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("create thumbnail dir: %w", err)
	}

	img, err := imaging.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}

	thumb := imaging.Fit(img, cfg.Width, cfg.Height, imaging.Lanczos)
	return imaging.Save(thumb, dstPath, imaging.JPEGQuality(cfg.Quality))
}
