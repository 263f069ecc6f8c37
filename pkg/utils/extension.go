package utils

import "strings"

var mediaExtensions = map[string]string{
	"image/jpeg":  ".jpg",
	"image/png":   ".png",
	"image/webp":  ".webp",
	"image/heic":  ".heic",
	"image/heif":  ".heif",
	"image/gif":   ".gif",
	"image/bmp":   ".bmp",
	"image/tiff":  ".tif",
	"audio/mp4":   ".m4a",
	"audio/x-m4a": ".m4a",
	"audio/aac":   ".aac",
	"audio/mpeg":  ".mp3",
	"audio/ogg":   ".ogg",
	"audio/wav":   ".wav",
	"audio/x-wav": ".wav",
	"audio/webm":  ".webm",
	"audio/amr":   ".amr",
	"audio/3gpp":  ".3gp",
	"audio/flac":  ".flac",
	"video/mp4":   ".m4a",
	"video/3gpp":  ".3gp",
}

// ExtensionFor returns the object key extension for a detected media type,
// ".bin" when the type is unknown. MP4 containers are stored as audio.
func ExtensionFor(mimeType string) string {
	cleaned := strings.TrimSpace(strings.Split(mimeType, ";")[0])
	if ext, ok := mediaExtensions[strings.ToLower(cleaned)]; ok {
		return ext
	}

	return ".bin"
}
