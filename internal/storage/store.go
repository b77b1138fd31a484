// Package storage is the result cache behind the CLI and HTTP surfaces:
// serialized ingestion results keyed by upload id. The core pipeline
// never touches it.
package storage

// Store is a small key-value cache with last-write-wins semantics.
// Missing keys are reported through the bool, not an error.
type Store interface {
	Get(key string) (value []byte, found bool, err error)
	Set(key string, value []byte) error
	Close() error
}
