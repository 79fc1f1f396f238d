package services

import (
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

// FormatFileSize renders a byte count as a short human-readable string
// ("10 B", "1.5 MB"), trimming trailing zeros.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}

	const unit = 1024
	sizes := []string{"B", "KB", "MB", "GB", "TB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(unit)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}

	value := math.Round(float64(bytes)/math.Pow(unit, float64(i))*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizes[i]
}

var codeExtensions = map[string]bool{
	"js": true, "jsx": true, "ts": true, "tsx": true, "py": true,
	"java": true, "cpp": true, "c": true, "php": true, "rb": true,
	"go": true, "rs": true, "swift": true, "kt": true, "dart": true,
	"html": true, "css": true, "json": true, "xml": true, "yml": true,
	"yaml": true, "md": true, "sql": true, "sh": true, "bash": true,
	"zsh": true, "fish": true, "ps1": true, "bat": true, "cmd": true,
}

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "bmp": true,
	"webp": true, "svg": true, "ico": true, "tiff": true,
}

var videoExtensions = map[string]bool{
	"mp4": true, "avi": true, "mov": true, "wmv": true, "flv": true,
	"webm": true, "mkv": true, "m4v": true, "3gp": true,
}

var audioExtensions = map[string]bool{
	"mp3": true, "wav": true, "flac": true, "aac": true, "ogg": true,
	"wma": true, "m4a": true, "opus": true,
}

var archiveExtensions = map[string]bool{
	"zip": true, "rar": true, "7z": true, "tar": true, "gz": true,
	"bz2": true, "xz": true,
}

var wordExtensions = map[string]bool{"doc": true, "docx": true, "odt": true, "rtf": true}
var excelExtensions = map[string]bool{"xls": true, "xlsx": true, "ods": true, "csv": true}
var powerpointExtensions = map[string]bool{"ppt": true, "pptx": true, "odp": true}
var textExtensions = map[string]bool{"txt": true, "log": true, "cfg": true, "conf": true, "ini": true}

// FileIcon classifies a file into a display icon from its mime type and
// extension. The mime type is client-supplied and untrusted, so the
// extension acts as a fallback signal.
func FileIcon(filename, mimeType string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	switch {
	case strings.HasPrefix(mimeType, "image/") || imageExtensions[ext]:
		return "fa-file-image"
	case strings.HasPrefix(mimeType, "video/") || videoExtensions[ext]:
		return "fa-file-video"
	case strings.HasPrefix(mimeType, "audio/") || audioExtensions[ext]:
		return "fa-file-audio"
	case codeExtensions[ext]:
		return "fa-file-code"
	case strings.Contains(mimeType, "pdf") || ext == "pdf":
		return "fa-file-pdf"
	case strings.Contains(mimeType, "word") || wordExtensions[ext]:
		return "fa-file-word"
	case strings.Contains(mimeType, "excel") || strings.Contains(mimeType, "spreadsheet") || excelExtensions[ext]:
		return "fa-file-excel"
	case strings.Contains(mimeType, "powerpoint") || strings.Contains(mimeType, "presentation") || powerpointExtensions[ext]:
		return "fa-file-powerpoint"
	case strings.Contains(mimeType, "zip") || strings.Contains(mimeType, "rar") || archiveExtensions[ext]:
		return "fa-file-archive"
	case strings.HasPrefix(mimeType, "text/") || textExtensions[ext]:
		return "fa-file-alt"
	default:
		return "fa-file"
	}
}
