// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package blob opens logs and charts by name. A name is a local path,
// "-" for the standard streams, or a gs://bucket/object URL.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

const gcsPrefix = "gs://"

// ParseGCS splits a gs://bucket/object URL. ok is false if name is
// not such a URL or either part is empty.
func ParseGCS(name string) (bucket, object string, ok bool) {
	if !strings.HasPrefix(name, gcsPrefix) {
		return "", "", false
	}
	bucket, object, ok = strings.Cut(name[len(gcsPrefix):], "/")
	if !ok || bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}

// newClient returns a storage client authenticated with the
// application default credentials.
func newClient(ctx context.Context) (*storage.Client, error) {
	ts, err := google.DefaultTokenSource(ctx, storage.ScopeReadWrite)
	if err != nil {
		return nil, fmt.Errorf("finding credentials: %w", err)
	}
	client, err := storage.NewClient(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return client, nil
}

// Open opens name for reading.
func Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	bucket, object, ok := ParseGCS(name)
	if !ok {
		return os.Open(name)
	}
	client, err := newClient(ctx)
	if err != nil {
		return nil, err
	}
	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &gcsReader{r, client}, nil
}

type gcsReader struct {
	*storage.Reader
	client *storage.Client
}

func (r *gcsReader) Close() error {
	err := r.Reader.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}

// Create creates or truncates name for writing. For gs:// names the
// object is not visible until Close returns without error.
func Create(ctx context.Context, name string) (io.WriteCloser, error) {
	if name == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	bucket, object, ok := ParseGCS(name)
	if !ok {
		return os.Create(name)
	}
	client, err := newClient(ctx)
	if err != nil {
		return nil, err
	}
	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType(object)
	return &gcsWriter{w, client, name}, nil
}

type gcsWriter struct {
	*storage.Writer
	client *storage.Client
	name   string
}

func (w *gcsWriter) Close() error {
	err := w.Writer.Close()
	if err != nil {
		err = fmt.Errorf("%s: %w", w.name, err)
	}
	if cerr := w.client.Close(); err == nil {
		err = cerr
	}
	return err
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// contentType guesses the MIME type of an object from its extension.
func contentType(object string) string {
	i := strings.LastIndexByte(object, '.')
	if i < 0 {
		return "application/octet-stream"
	}
	switch strings.ToLower(object[i+1:]) {
	case "pdf":
		return "application/pdf"
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "eps":
		return "application/postscript"
	case "csv":
		return "text/csv"
	case "html":
		return "text/html; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}
