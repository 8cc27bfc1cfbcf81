// Package archive stores raw NF-e XML payloads in a GCS bucket after
// successful persistence, keyed by access key.
package archive

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
)

// Archiver writes raw XML bytes to a bucket. A nil Archiver (no bucket
// configured) is valid and archives nothing.
type Archiver struct {
	bucket string
}

// New returns an Archiver for the given bucket, or nil when bucket is empty.
func New(bucket string) *Archiver {
	if bucket == "" {
		return nil
	}
	return &Archiver{bucket: bucket}
}

// Store uploads one document under nfe/<year>/<accessKey>.xml.
func (a *Archiver) Store(ctx context.Context, accessKey string, data []byte) error {
	if a == nil {
		return nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("archive: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	objectName := fmt.Sprintf("nfe/%d/%s.xml", time.Now().Year(), accessKey)
	w := client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/xml"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("archive: write object %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("archive: finalize upload %s: %w", objectName, err)
	}
	return nil
}
