package services

import (
	"encoding/base64"
	"fmt"
	"strings"

	"dailydiet/internal/apperrors"

	"github.com/gabriel-vasile/mimetype"
)

// maxAvatarBytes bounds a decoded avatar image.
const maxAvatarBytes = 5 << 20

// Avatar is a decoded avatar image ready for storage.
type Avatar struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeAvatar decodes a base64 image, either raw or wrapped in a
// "data:<mime>;base64," URL. The content type is sniffed from the bytes.
func DecodeAvatar(payload string) (*Avatar, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 || !strings.HasSuffix(payload[:comma], ";base64") {
			return nil, fmt.Errorf("avatar must be a base64 data URL: %w", apperrors.ErrValidation)
		}
		payload = payload[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("avatar is not valid base64: %w", apperrors.ErrValidation)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("avatar is empty: %w", apperrors.ErrValidation)
	}
	if len(data) > maxAvatarBytes {
		return nil, fmt.Errorf("avatar exceeds %d bytes: %w", maxAvatarBytes, apperrors.ErrValidation)
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, fmt.Errorf("avatar has unsupported type %s: %w", mime.String(), apperrors.ErrValidation)
	}

	return &Avatar{
		Data:        data,
		ContentType: mime.String(),
		Extension:   mime.Extension(),
	}, nil
}
