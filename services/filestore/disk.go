// Package filestore provides the upload backends: local disk for DEV and
// tests, Aliyun OSS for deployed environments.
package filestore

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core"
)

type diskStore struct {
	root string
}

var _ core.FileStore = (*diskStore)(nil)

func NewDiskStore(conf *core.Config) *diskStore {
	return &diskStore{root: conf.FileStore.Root}
}

// objectKey prefixes the filename with a random ID so repeated uploads of the
// same name never collide.
func objectKey(folder, filename string) string {
	filename = strings.ReplaceAll(filepath.Base(filename), " ", "_")
	id := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return path.Join(folder, id+"-"+filename)
}

func (store *diskStore) Save(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	ref := objectKey(folder, filename)
	dst := filepath.Join(store.root, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", errors.Wrap(err, "creating upload folder")
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", errors.Wrap(err, "creating upload file")
	}
	defer func() { _ = f.Close() }()

	if _, err = io.Copy(f, r); err != nil {
		return "", errors.Wrap(err, "writing upload file")
	}
	return ref, nil
}

func (store *diskStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(store.root, filepath.FromSlash(ref)))
	if err != nil {
		return nil, errors.Wrap(err, "opening upload file")
	}
	return f, nil
}
