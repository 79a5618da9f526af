package middleware

import (
	"errors"
	"fmt"
	"strings"
)

const (
	NOTIFICATION_SEPARATOR = ";"
)

var ErrInvalidNotification = errors.New("invalid file notification")

// FileNotification announces a raw sales file ready to be processed. On the
// wire it is "<bucket>;<fileName>".
type FileNotification struct {
	Bucket   string
	FileName string
}

func NewFileNotification(bucket, fileName string) FileNotification {
	return FileNotification{
		Bucket:   bucket,
		FileName: fileName,
	}
}

func ParseFileNotification(body []byte) (FileNotification, error) {
	parts := strings.Split(strings.TrimSpace(string(body)), NOTIFICATION_SEPARATOR)
	if len(parts) < 2 {
		return FileNotification{}, fmt.Errorf("%w: %q", ErrInvalidNotification, body)
	}

	notification := NewFileNotification(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
	if notification.Bucket == "" || notification.FileName == "" {
		return FileNotification{}, fmt.Errorf("%w: %q", ErrInvalidNotification, body)
	}
	return notification, nil
}

func (n FileNotification) ToBytes() []byte {
	return []byte(n.String())
}

func (n FileNotification) String() string {
	return n.Bucket + NOTIFICATION_SEPARATOR + n.FileName
}
