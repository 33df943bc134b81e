package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.csv")
	if err := os.WriteFile(path, []byte("a,b,c\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Service{}.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "a,b,c\n" {
		t.Errorf("read %q, want %q", data, "a,b,c\n")
	}
}

func TestOpenMissingLocalFile(t *testing.T) {
	_, err := Service{}.Open(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSplitGCSURI(t *testing.T) {
	tests := []struct {
		uri        string
		bucket     string
		object     string
		wantErr    bool
	}{
		{uri: "gs://bucket/path/to/file.csv", bucket: "bucket", object: "path/to/file.csv"},
		{uri: "gs://bucket", wantErr: true},
		{uri: "gs://bucket/", wantErr: true},
		{uri: "gs:///object", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := splitGCSURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("splitGCSURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			}
			if err == nil && (bucket != tt.bucket || object != tt.object) {
				t.Errorf("splitGCSURI(%q) = %q, %q", tt.uri, bucket, object)
			}
		})
	}
}
