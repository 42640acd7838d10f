package cameriere

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// KVTokenStore shares one admin session through a JetStream key-value bucket.
type KVTokenStore struct {
	kv jetstream.KeyValue
}

var _ TokenStore = (*KVTokenStore)(nil)

func NewKVTokenStore(ctx context.Context, nc *nats.Conn, bucket string) (*KVTokenStore, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "trattoria admin session tokens",
		History:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("open token bucket %q: %w", bucket, err)
	}
	return &KVTokenStore{kv: kv}, nil
}

func (k *KVTokenStore) Tokens(ctx context.Context) (TokenPair, error) {
	access, err := k.get(ctx, AccessTokenKey)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := k.get(ctx, RefreshTokenKey)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (k *KVTokenStore) Save(ctx context.Context, tokens TokenPair) error {
	if _, err := k.kv.Put(ctx, AccessTokenKey, []byte(tokens.Access)); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if tokens.Refresh == "" {
		return nil
	}
	if _, err := k.kv.Put(ctx, RefreshTokenKey, []byte(tokens.Refresh)); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

func (k *KVTokenStore) Clear(ctx context.Context) error {
	return errors.Join(
		k.kv.Delete(ctx, AccessTokenKey),
		k.kv.Delete(ctx, RefreshTokenKey),
	)
}

func (k *KVTokenStore) get(ctx context.Context, key string) (string, error) {
	entry, err := k.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return string(entry.Value()), nil
}
