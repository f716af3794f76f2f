package model

import "context"

// ObjectStorage hands out presigned upload URLs for user files.
type ObjectStorage interface {
	// PresignUpload returns a time-limited PUT URL and the object key the
	// upload will land under.
	PresignUpload(ctx context.Context, uid, filename string) (url string, key string, err error)
}
