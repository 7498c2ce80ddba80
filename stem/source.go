package stem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type (
	// Fetcher opens stem locators. Supported locators are http(s) URLs,
	// s3://bucket/key object URLs (when S3 is set), file:// URLs and plain
	// file paths. Relative paths are resolved against BaseDir.
	Fetcher struct {
		HTTP    *http.Client
		S3      *minio.Client
		BaseDir string
	}

	S3Options struct {
		Endpoint  string
		AccessKey string
		SecretKey string
		Region    string
		UseSSL    bool
	}
)

var ErrNoObjectStore = errors.New("no object store configured for s3:// locators")

func NewS3Client(o S3Options) (*minio.Client, error) {
	client, err := minio.New(o.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(o.AccessKey, o.SecretKey, ""),
		Secure: o.UseSSL,
		Region: o.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create object store client: %w", err)
	}
	return client, nil
}

// Open returns the contents of the locator and its size in bytes, -1 if
// unknown.
func (f *Fetcher) Open(ctx context.Context, locator string) (io.ReadCloser, int64, error) {
	u, err := url.Parse(locator)
	if err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return f.openHTTP(ctx, locator)
		case "s3":
			return f.openS3(ctx, u.Host, strings.TrimPrefix(u.Path, "/"))
		case "file":
			return openFile(u.Path)
		}
	}
	path := locator
	if !filepath.IsAbs(path) && f.BaseDir != "" {
		path = filepath.Join(f.BaseDir, path)
	}
	return openFile(path)
}

func (f *Fetcher) openHTTP(ctx context.Context, locator string) (io.ReadCloser, int64, error) {
	client := f.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("GET %s: %s", locator, resp.Status)
	}
	return resp.Body, resp.ContentLength, nil
}

func (f *Fetcher) openS3(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error) {
	if f.S3 == nil {
		return nil, 0, ErrNoObjectStore
	}
	obj, err := f.S3.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("could not get s3://%s/%s: %w", bucket, key, err)
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, 0, fmt.Errorf("could not stat s3://%s/%s: %w", bucket, key, err)
	}
	return obj, info.Size, nil
}

func openFile(path string) (io.ReadCloser, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, err
	}
	return file, info.Size(), nil
}

// progressReader reports how much of the source has been read and stops
// early when ctx is done.
type progressReader struct {
	ctx      context.Context
	r        io.Reader
	read     int64
	size     int64
	progress func(percent float64)
	share    float64 // the part of the whole load that fetching accounts for
}

func (p *progressReader) Read(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.size > 0 && n > 0 {
		p.progress(min(float64(p.read)/float64(p.size), 1) * p.share)
	}
	return n, err
}
