package service

import (
	"encoding/base64"
	"strings"

	"safenetwork-api/pkg/apierror"
)

// PhotoUploadResult carries the public URL of a freshly stored photo.
type PhotoUploadResult struct {
	URL string `json:"url"`
}

// photoContentTypes maps accepted upload extensions to content types.
var photoContentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
}

// decodePhoto validates and decodes a base64 photo payload. The size cap
// applies to the decoded bytes, not the base64 text. Data-URL prefixes
// (data:image/png;base64,...) are tolerated and stripped.
func decodePhoto(encoded, ext string, maxBytes int64) ([]byte, string, error) {
	contentType, ok := photoContentTypes[strings.ToLower(strings.TrimPrefix(ext, "."))]
	if !ok {
		return nil, "", apierror.BadRequest("Unsupported image type")
	}

	if idx := strings.Index(encoded, "base64,"); idx != -1 {
		encoded = encoded[idx+len("base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", apierror.BadRequest("Invalid image data")
	}
	if len(data) == 0 {
		return nil, "", apierror.BadRequest("Image data is empty")
	}
	if int64(len(data)) > maxBytes {
		return nil, "", apierror.BadRequest("Image exceeds the 5MB limit")
	}
	return data, contentType, nil
}
