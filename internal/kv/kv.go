// Package kv provides the key-value substrate backing the partition
// stores. Each key holds one whole JSON document; Set replaces the
// value atomically, so readers never observe a partial write.
package kv

import "context"

// Store is the minimal get/set/remove contract the partition stores
// are written against. The second return of Get distinguishes an
// absent key from an empty value.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
