package gcs

import (
	"testing"
	"time"
)

func TestReportObjectName(t *testing.T) {
	date := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)
	if got := ReportObjectName(date); got != "reports/2024-03-15.txt" {
		t.Errorf("ReportObjectName = %q", got)
	}
}

func TestSplitGCSURI(t *testing.T) {
	tests := []struct {
		uri     string
		bucket  string
		object  string
		wantErr bool
	}{
		{"gs://my-bucket/reports/2024-03-15.txt", "my-bucket", "reports/2024-03-15.txt", false},
		{"gs://my-bucket/file.txt", "my-bucket", "file.txt", false},
		{"gs://my-bucket", "", "", true},
		{"gs://my-bucket/", "", "", true},
		{"https://example.com/file.txt", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := splitGCSURI(tt.uri)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.uri)
				}
				return
			}
			if err != nil {
				t.Fatalf("splitGCSURI(%q): %v", tt.uri, err)
			}
			if bucket != tt.bucket || object != tt.object {
				t.Errorf("splitGCSURI(%q) = %q, %q", tt.uri, bucket, object)
			}
		})
	}
}

func TestExtractFilenameFromGCSURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"gs://bucket/reports/2024-03-15.txt", "2024-03-15.txt"},
		{"gs://bucket/file.txt", "file.txt"},
		{"gs://bucket-only", "bucket-only"},
	}

	for _, tt := range tests {
		if got := ExtractFilenameFromGCSURI(tt.uri); got != tt.want {
			t.Errorf("ExtractFilenameFromGCSURI(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}
