package filestore

import (
	"context"
	"io"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core"
)

type ossStore struct {
	bucket *oss.Bucket
}

var _ core.FileStore = (*ossStore)(nil)

func NewOSSStore(conf *core.Config) (*ossStore, error) {
	client, err := oss.New(conf.FileStore.OSSEndpoint, conf.FileStore.OSSAccessKeyID, conf.FileStore.OSSAccessKeySecret)
	if err != nil {
		return nil, errors.Wrap(err, "creating OSS client")
	}
	bucket, err := client.Bucket(conf.FileStore.OSSBucket)
	if err != nil {
		return nil, errors.Wrap(err, "opening OSS bucket")
	}
	return &ossStore{bucket: bucket}, nil
}

func (store *ossStore) Save(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	ref := objectKey(folder, filename)
	if err := store.bucket.PutObject(ref, r); err != nil {
		return "", errors.Wrap(err, "uploading object")
	}
	return ref, nil
}

func (store *ossStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	body, err := store.bucket.GetObject(ref)
	if err != nil {
		return nil, errors.Wrap(err, "downloading object")
	}
	return body, nil
}
