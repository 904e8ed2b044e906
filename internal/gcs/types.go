// Package gcs stores rendered reports in Google Cloud Storage and fetches
// object bytes back by gs:// URI.
package gcs

import (
	"context"
	"time"
)

// StorageService provides an interface for cloud storage operations.
// This interface enables mocking and testing of storage functionality.
type StorageService interface {
	// UploadReport uploads a rendered report for the given date and returns
	// the gs:// URI of the written object.
	UploadReport(ctx context.Context, bucketName string, reportDate time.Time, text string) (string, error)

	// FetchFromGCS downloads file bytes from the given storage URI.
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)

	// ExtractFilenameFromGCSURI extracts the filename from a storage URI.
	ExtractFilenameFromGCSURI(uri string) string
}

// GCSStorageService is the concrete implementation of StorageService
// that interacts with Google Cloud Storage.
type GCSStorageService struct{}

// NewGCSStorageService creates a new instance of GCSStorageService.
func NewGCSStorageService() *GCSStorageService {
	return &GCSStorageService{}
}

// UploadReport delegates to the package-level UploadReport function.
func (s *GCSStorageService) UploadReport(ctx context.Context, bucketName string, reportDate time.Time, text string) (string, error) {
	return UploadReport(ctx, bucketName, reportDate, text)
}

// FetchFromGCS delegates to the package-level FetchFromGCS function.
func (s *GCSStorageService) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	return FetchFromGCS(ctx, gcsURI)
}

// ExtractFilenameFromGCSURI delegates to the package-level function.
func (s *GCSStorageService) ExtractFilenameFromGCSURI(uri string) string {
	return ExtractFilenameFromGCSURI(uri)
}
