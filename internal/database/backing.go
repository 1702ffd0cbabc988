// Package database is the durable key-value backing under the secure store.
// It only ever sees opaque, already-encrypted blobs.
package database

import "errors"

// ErrNotFound is returned by Get when no blob is stored under the key.
var ErrNotFound = errors.New("database: key not found")

// Backing stores opaque blobs by key. Writes are synchronous: when Put returns
// nil the blob is durable.
type Backing interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Keys() ([]string, error)
	Clear() error
	Close() error
}
