package storage

import "io"

// BlobStore holds lesson media (video, attachments). Keys are slash-joined
// paths under the store root.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error)
	Get(key string) (io.ReadCloser, error)
}
