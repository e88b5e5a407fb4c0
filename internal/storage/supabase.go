// Package storage uploads session audio to Supabase Storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	storage_go "github.com/supabase-community/storage-go"

	"github.com/psiai/psiai-backend/internal/apperr"
	"github.com/psiai/psiai-backend/internal/config"
)

const defaultContentType = "audio/mpeg"

// Uploader writes audio objects into a single public bucket.
type Uploader struct {
	baseURL string
	key     string
	bucket  string
	logger  *logrus.Logger
}

// NewUploader creates an uploader for the configured Supabase project.
func NewUploader(cfg config.StorageConfig, logger *logrus.Logger) *Uploader {
	return &Uploader{
		baseURL: strings.TrimRight(cfg.URL, "/") + "/storage/v1",
		key:     cfg.Key,
		bucket:  cfg.Bucket,
		logger:  logger,
	}
}

// newClient returns a fresh client per call: storage-go keeps upload
// headers on the client's transport, so a shared client is not safe.
func (u *Uploader) newClient() *storage_go.Client {
	return storage_go.NewClient(u.baseURL, u.key, map[string]string{"apikey": u.key})
}

// Upload stores data under "<uuid>_<sanitized filename>" and returns the
// object's public URL.
func (u *Uploader) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperr.Upstream(err, "audio upload cancelled")
	}

	u.ensureBucket()

	sanitized := Sanitize(filename)
	key := uuid.NewString() + "_" + sanitized
	contentType := contentTypeFor(sanitized)
	upsert := false

	client := u.newClient()
	_, err := client.UploadFile(u.bucket, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", u.classify(err, filename, sanitized)
	}

	u.logger.WithFields(logrus.Fields{
		"bucket": u.bucket,
		"key":    key,
		"bytes":  len(data),
	}).Info("Uploaded session audio")

	return client.GetPublicUrl(u.bucket, key).SignedURL, nil
}

// ensureBucket attempts to create the bucket. The result is advisory: the
// upload that follows is the authoritative existence check.
func (u *Uploader) ensureBucket() {
	_, err := u.newClient().CreateBucket(u.bucket, storage_go.BucketOptions{Public: true})
	if err == nil {
		u.logger.WithField("bucket", u.bucket).Info("Created storage bucket")
		return
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate") {
		return
	}
	u.logger.WithError(err).WithField("bucket", u.bucket).Debug("Bucket creation failed, attempting upload anyway")
}

func (u *Uploader) classify(err error, original, sanitized string) error {
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(msg, "InvalidKey") || strings.Contains(lower, "invalid key"):
		return apperr.Wrap(apperr.InvalidObjectKey, err, fmt.Sprintf(
			"invalid object key after sanitization (original name %q, sanitized name %q)", original, sanitized))

	case strings.Contains(lower, "bucket") && strings.Contains(lower, "not found"):
		return apperr.Wrap(apperr.StorageNotConfigured, err, fmt.Sprintf(
			"storage bucket %q not found. Create it manually: "+
				"1. open the Supabase dashboard; "+
				"2. go to Storage > Buckets; "+
				"3. click 'New bucket'; "+
				"4. name it %q; "+
				"5. mark it public if audio URLs must be shareable",
			u.bucket, u.bucket))

	default:
		return apperr.Upstream(err, "audio upload failed")
	}
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); strings.HasPrefix(ct, "audio/") {
		return ct
	}
	return defaultContentType
}
