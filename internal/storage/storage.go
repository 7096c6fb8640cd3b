// Package storage persists recipe image blobs. Clients submit images as
// base64 payloads (optionally wrapped in a data URI); the decoded bytes are
// written either to a local media directory or to an S3 bucket, and the
// recipe row stores the returned reference.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ErrInvalidImage is returned when a submitted image payload cannot be
// decoded or uses an unsupported format.
var ErrInvalidImage = errors.New("invalid image payload")

// ImageStore saves a decoded image and returns the stored reference
// (a URL or path suitable for the recipe's image field).
type ImageStore interface {
	Save(ctx context.Context, data []byte, ext string) (string, error)
}

// extByMIME maps the accepted data-URI media types to file extensions.
var extByMIME = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DecodeBase64Image decodes a base64 image payload. Both bare base64 and
// data-URI form ("data:image/png;base64,....") are accepted; the data URI
// additionally pins the file extension. Bare payloads default to ".png".
func DecodeBase64Image(payload string) (data []byte, ext string, err error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, "", ErrInvalidImage
	}

	ext = ".png"
	if strings.HasPrefix(payload, "data:") {
		head, rest, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, "", ErrInvalidImage
		}
		mime := strings.TrimPrefix(head, "data:")
		mime = strings.TrimSuffix(mime, ";base64")
		mapped, known := extByMIME[mime]
		if !known {
			return nil, "", ErrInvalidImage
		}
		ext = mapped
		payload = rest
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, "", ErrInvalidImage
	}
	return data, ext, nil
}

// LocalStore writes images under a media directory on the local filesystem.
type LocalStore struct {
	// Dir is the directory blobs are written to. It must exist.
	Dir string
	// BaseURL prefixes the returned reference, e.g. "/media".
	BaseURL string
}

// Save writes the blob under a random file name and returns its URL.
func (s *LocalStore) Save(_ context.Context, data []byte, ext string) (string, error) {
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", err
	}
	return strings.TrimSuffix(s.BaseURL, "/") + "/" + name, nil
}

// S3Store uploads images to an S3 bucket.
type S3Store struct {
	Client *s3.Client
	Bucket string
	// Prefix is the key prefix inside the bucket, e.g. "media/recipes".
	Prefix string
}

// Save uploads the blob under a random key and returns the bucket URL.
func (s *S3Store) Save(ctx context.Context, data []byte, ext string) (string, error) {
	key := path.Join(s.Prefix, uuid.NewString()+ext)
	contentType := "application/octet-stream"
	for mime, e := range extByMIME {
		if e == ext {
			contentType = mime
			break
		}
	}
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.Bucket, key), nil
}
