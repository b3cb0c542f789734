// Package cache provides a Redis-backed cache for word-level enrichment.
// A word looked up once in a given sentence context keeps its translation
// and definition for the configured TTL, so re-activating a token after a
// clear does not hit the language service again.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"lexibook/api/internal/textdoc"
)

// WordCache stores enrichment results keyed on word plus sentence context.
type WordCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewWordCache connects to Redis and verifies the connection.
func NewWordCache(redisURL string, ttl time.Duration) (*WordCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &WordCache{client: client, ttl: ttl}, nil
}

// NewWordCacheWithClient creates a cache from an existing Redis client.
func NewWordCacheWithClient(client *redis.Client, ttl time.Duration) *WordCache {
	return &WordCache{client: client, ttl: ttl}
}

// key hashes word and sentence so arbitrary text cannot produce oversized
// or malformed Redis keys.
func key(kind, word, sentence string) string {
	sum := sha1.Sum([]byte(word + "|" + sentence))
	return "word:" + kind + ":" + hex.EncodeToString(sum[:])
}

// GetTranslation returns the cached contextual translation for a word.
func (c *WordCache) GetTranslation(ctx context.Context, word, sentence string) (string, bool) {
	value, err := c.client.Get(ctx, key("tr", word, sentence)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		log.Printf("cache: get translation: %v", err)
		return "", false
	}
	return value, true
}

// PutTranslation stores a contextual translation. Cache write failures are
// logged, never surfaced; the cache is an optimization only.
func (c *WordCache) PutTranslation(ctx context.Context, word, sentence, translation string) {
	if err := c.client.Set(ctx, key("tr", word, sentence), translation, c.ttl).Err(); err != nil {
		log.Printf("cache: put translation: %v", err)
	}
}

// GetDefinition returns the cached definition for a word.
func (c *WordCache) GetDefinition(ctx context.Context, word, sentence string) (textdoc.Definition, bool) {
	value, err := c.client.Get(ctx, key("def", word, sentence)).Result()
	if err == redis.Nil {
		return textdoc.Definition{}, false
	}
	if err != nil {
		log.Printf("cache: get definition: %v", err)
		return textdoc.Definition{}, false
	}

	var def textdoc.Definition
	if err := json.Unmarshal([]byte(value), &def); err != nil {
		log.Printf("cache: decode definition: %v", err)
		return textdoc.Definition{}, false
	}
	return def, true
}

// PutDefinition stores a definition.
func (c *WordCache) PutDefinition(ctx context.Context, word, sentence string, def textdoc.Definition) {
	data, err := json.Marshal(def)
	if err != nil {
		log.Printf("cache: encode definition: %v", err)
		return
	}
	if err := c.client.Set(ctx, key("def", word, sentence), data, c.ttl).Err(); err != nil {
		log.Printf("cache: put definition: %v", err)
	}
}

// Close closes the Redis connection.
func (c *WordCache) Close() error {
	return c.client.Close()
}

// Ping checks if Redis is reachable.
func (c *WordCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
