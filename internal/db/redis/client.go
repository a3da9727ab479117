// Package redis stores property records as RedisJSON documents behind a
// RediSearch index, over rueidis.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/propsync/internal/db"
)

var _ db.DocumentStore = (*Store)(nil)

// readyPollInterval spaces the pings of WaitForReady.
const readyPollInterval = 200 * time.Millisecond

// Config holds connection parameters for a Redis 8 server.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Store is the Redis record store.
type Store struct {
	client rueidis.Client
}

// NewStore connects to Redis. Client-side caching stays off: records are
// written in bulk and read only through FT.SEARCH.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("redis: at least one address is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // parseListResult reads the RESP2 FT.SEARCH layout
	})
	if err != nil {
		return nil, fmt.Errorf("redis: connect %v: %w", cfg.Addrs, err)
	}
	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close releases the connections.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings until Redis answers or timeout expires. Startup calls
// it before creating the record index.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("redis not ready after %s: %w", timeout, err)
		case <-time.After(readyPollInterval):
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr reports whether err is a server reply whose message contains
// substr, ignoring case. Network errors never match.
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
