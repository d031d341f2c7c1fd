package cli

import (
	"encoding/base64"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-docgen/docgen"
)

// heic and heif are not sniffed by net/http and missing from most mime tables.
var imageExtensions = map[string]string{
	".heic": "image/heic",
	".heif": "image/heif",
	".webp": "image/webp",
}

// readImageFile loads an image from disk as a data URI after checking its
// type and size for kind.
func readImageFile(path string, kind docgen.UploadKind) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", docgen.NewError(docgen.KindValidation, "read image "+filepath.Base(path), err)
	}
	contentType := imageContentType(path, data)
	if err := docgen.CheckUpload(contentType, int64(len(data)), kind); err != nil {
		return "", err
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func imageContentType(path string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := imageExtensions[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		if media, _, err := mime.ParseMediaType(ct); err == nil {
			return media
		}
	}
	return sniffed
}
