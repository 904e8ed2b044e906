package gcs

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/dvloznov/budget-insight/internal/logger"
)

const reportsPrefix = "reports"

// ReportObjectName returns the canonical object name for a daily report,
// e.g. "reports/2024-03-15.txt".
func ReportObjectName(reportDate time.Time) string {
	return fmt.Sprintf("%s/%s.txt", reportsPrefix, reportDate.Format("2006-01-02"))
}

// UploadReport uploads a rendered report under the canonical object name and
// returns the gs:// URI of the written object. It assumes Application Default
// Credentials are configured.
func UploadReport(ctx context.Context, bucketName string, reportDate time.Time, text string) (string, error) {
	objectName := ReportObjectName(reportDate)

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("UploadReport: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	obj := client.Bucket(bucketName).Object(objectName)

	w := obj.NewWriter(ctx)
	w.ContentType = "text/plain; charset=utf-8"
	defer func() {
		// Ensure the writer is closed even on early returns
		_ = w.Close()
	}()

	if _, err := io.Copy(w, strings.NewReader(text)); err != nil {
		return "", fmt.Errorf("UploadReport: copy report to GCS writer: %w", err)
	}

	// Close to finalize the upload
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("UploadReport: finalize upload: %w", err)
	}

	uri := fmt.Sprintf("gs://%s/%s", bucketName, objectName)

	logger.FromContext(ctx).Info().
		Str("gcs_uri", uri).
		Int("bytes", len(text)).
		Msg("Uploaded report to GCS")

	return uri, nil
}

// FetchFromGCS downloads the file bytes from the given GCS URI.
func FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	bucketName, objectPath, err := splitGCSURI(gcsURI)
	if err != nil {
		return nil, err
	}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchFromGCS: creating storage client: %w", err)
	}
	defer storageClient.Close()

	rc, err := storageClient.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchFromGCS: reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("FetchFromGCS: reading bytes: %w", err)
	}

	return data, nil
}

// splitGCSURI splits "gs://bucket/path/to/object" into bucket and object path.
func splitGCSURI(gcsURI string) (bucket, object string, err error) {
	if !strings.HasPrefix(gcsURI, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", gcsURI)
	}

	trimmed := strings.TrimPrefix(gcsURI, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", gcsURI)
	}

	return parts[0], parts[1], nil
}

// ExtractFilenameFromGCSURI extracts the filename from a GCS URI.
// e.g., "gs://bucket/reports/2024-03-15.txt" → "2024-03-15.txt"
func ExtractFilenameFromGCSURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")

	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}

	return path.Base(parts[1])
}
