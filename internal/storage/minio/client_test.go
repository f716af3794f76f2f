package minio

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallboard/wallboard-server/internal/model"
)

// fakeMinio implements minioAPI for testing without network.
type fakeMinio struct {
	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error

	presignedKey string
	presignErr   error
}

func (f *fakeMinio) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}
func (f *fakeMinio) MakeBucket(_ context.Context, _ string, _ minioLib.MakeBucketOptions) error {
	return f.makeBucketErr
}
func (f *fakeMinio) PresignedPutObject(_ context.Context, bucket, key string, _ time.Duration) (*url.URL, error) {
	if f.presignErr != nil {
		return nil, f.presignErr
	}
	f.presignedKey = key
	return url.Parse(fmt.Sprintf("https://minio.local/%s/%s?signature=abc", bucket, key))
}

func TestNewClientWithAPI_BucketExists(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true}
	c, err := NewClientWithAPI(ctx, api, "b")
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, "b", c.bucket)
}

func TestNewClientWithAPI_CreateBucket(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: false}
	c, err := NewClientWithAPI(ctx, api, "bucket")
	require.NoError(t, err)
	assert.Equal(t, "bucket", c.bucket)
}

func TestNewClientWithAPI_BucketExistsError(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExistsErr: errors.New("boom")}
	c, err := NewClientWithAPI(ctx, api, "bucket")
	assert.Nil(t, c)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ensure bucket exists")
}

func TestClient_PresignUpload(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		api := &fakeMinio{}
		c := &Client{api: api, bucket: "b", now: func() time.Time { return fixed }}

		uploadURL, key, err := c.PresignUpload(ctx, "a@b.com", "photo.png")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("uploads/a@b.com/%d-photo.png", fixed.UnixMilli()), key)
		assert.Contains(t, uploadURL, "https://minio.local/b/")
	})

	t.Run("strips directories", func(t *testing.T) {
		api := &fakeMinio{}
		c := &Client{api: api, bucket: "b", now: func() time.Time { return fixed }}

		_, key, err := c.PresignUpload(ctx, "a@b.com", "../../etc/passwd")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("uploads/a@b.com/%d-passwd", fixed.UnixMilli()), key)
	})

	t.Run("empty filename", func(t *testing.T) {
		api := &fakeMinio{}
		c := &Client{api: api, bucket: "b", now: func() time.Time { return fixed }}

		_, _, err := c.PresignUpload(ctx, "a@b.com", "")
		var verr *model.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "filename")
	})

	t.Run("error", func(t *testing.T) {
		api := &fakeMinio{presignErr: errors.New("presign-fail")}
		c := &Client{api: api, bucket: "b", now: func() time.Time { return fixed }}

		_, _, err := c.PresignUpload(ctx, "a@b.com", "photo.png")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to presign upload")
	})
}
