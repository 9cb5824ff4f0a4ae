package gcs

import (
	"errors"
	"testing"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"gs://bucket/file.csv", "bucket", "file.csv", false},
		{"gs://bucket/path/to/file.csv", "bucket", "path/to/file.csv", false},
		{"gs://bucket", "", "", true},
		{"gs://bucket/", "", "", true},
		{"gs:///file.csv", "", "", true},
		{"/local/file.csv", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURI() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidURI) {
				t.Fatalf("expected ErrInvalidURI, got %v", err)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("ParseURI() = %q, %q; want %q, %q", bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}

func TestObjectName(t *testing.T) {
	tests := []struct {
		prefix, local, want string
	}{
		{"reports/", "out/summary.csv", "reports/summary.csv"},
		{"", "financial_report.xlsx", "financial_report.xlsx"},
		{"a/b", `C:\tmp\chart.png`, "a/b/chart.png"},
	}
	for _, tt := range tests {
		if got := ObjectName(tt.prefix, tt.local); got != tt.want {
			t.Errorf("ObjectName(%q, %q) = %q, want %q", tt.prefix, tt.local, got, tt.want)
		}
	}
}

func TestIsURI(t *testing.T) {
	if !IsURI("gs://b/o") || IsURI("tmp.csv") {
		t.Fatal("IsURI misclassified input")
	}
}
