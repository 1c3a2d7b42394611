// Package storage keeps catalog images on a local directory or an S3
// bucket and builds their public URLs.
//
//	storage.Connect(ctx)
//	storage.Put(ctx, "goods/apple.jpg", r)
//	storage.URL("goods/apple.jpg") // → https://cdn.example.com/goods/apple.jpg
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/shashiranjanraj/dailyfresh/config"
)

// Disk is one storage backend.
type Disk interface {
	Put(ctx context.Context, path string, r io.Reader) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Exists(ctx context.Context, path string) bool
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

var (
	mu   sync.RWMutex
	disk Disk
)

// Connect builds the disk named by STORAGE_DISK ("local" or "s3").
func Connect(ctx context.Context) error {
	var (
		d   Disk
		err error
	)
	switch name := config.StorageDefault(); name {
	case "local":
		d = NewLocal(config.StorageLocalRoot(), config.StorageURL())
	case "s3":
		d, err = NewS3(ctx, S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		})
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("storage: unknown disk %q", name)
	}
	Use(d)
	return nil
}

func Use(d Disk) {
	mu.Lock()
	disk = d
	mu.Unlock()
}

// Current is the disk set by Connect or Use, or nil.
func Current() Disk {
	mu.RLock()
	defer mu.RUnlock()
	return disk
}

func Put(ctx context.Context, path string, r io.Reader) error {
	d := Current()
	if d == nil {
		return fmt.Errorf("storage: not connected")
	}
	return d.Put(ctx, path, r)
}

func Exists(ctx context.Context, path string) bool {
	d := Current()
	return d != nil && d.Exists(ctx, path)
}

// URL returns the public URL for path. Before Connect, or for values that
// are already absolute URLs, path is returned as is.
func URL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	d := Current()
	if d == nil {
		return path
	}
	return d.URL(path)
}

func cleanKey(path string) string {
	return strings.TrimLeft(path, "/")
}
