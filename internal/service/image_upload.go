package service

import (
	"encoding/base64"
	"strings"
)

// maxImageBytes caps decoded uploads.
const maxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type imageUpload struct {
	contentType string
	ext         string
	body        []byte
}

// decodeDataURI parses "data:<content-type>;base64,<payload>".
func decodeDataURI(uri string) (imageUpload, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return imageUpload{}, validation("data must be a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return imageUpload{}, validation("data URI has no payload")
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return imageUpload{}, validation("data URI must be base64 encoded")
	}
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return imageUpload{}, validation("unsupported image type %q", contentType)
	}
	body, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return imageUpload{}, validation("data URI payload: %v", err)
	}
	if len(body) == 0 {
		return imageUpload{}, validation("image is empty")
	}
	if len(body) > maxImageBytes {
		return imageUpload{}, validation("image exceeds %d bytes", maxImageBytes)
	}
	return imageUpload{contentType: strings.ToLower(contentType), ext: ext, body: body}, nil
}
