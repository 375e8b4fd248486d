package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/krau/konaclassify/service"
	"github.com/vmihailenco/msgpack/v5"
)

// Results caches ranked results per image digest and k. Entries are
// namespaced by a model fingerprint, so results written under another model,
// label list or preprocessing setup are never returned.
type Results struct {
	store       Store
	fingerprint string
}

func NewResults(store Store, fingerprint string) *Results {
	return &Results{store: store, fingerprint: fingerprint}
}

// Digest returns the hex SHA-256 of raw image bytes.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (r *Results) key(digest string, k int) []byte {
	return []byte("result:" + r.fingerprint + ":" + digest + ":" + strconv.Itoa(k))
}

// Get reports false when nothing is cached for the digest and k.
func (r *Results) Get(ctx context.Context, digest string, k int) (service.RankedResult, bool, error) {
	data, err := r.store.Get(ctx, r.key(digest, k))
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached result: %w", err)
	}
	var res service.RankedResult
	if err := msgpack.Unmarshal(data, &res); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return res, true, nil
}

func (r *Results) Put(ctx context.Context, digest string, k int, res service.RankedResult) error {
	data, err := msgpack.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := r.store.Set(ctx, r.key(digest, k), data); err != nil {
		return fmt.Errorf("failed to write cached result: %w", err)
	}
	return nil
}

func (r *Results) Close() error {
	return r.store.Close()
}
