package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type ConnectionInfo struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
}

type Client = goredis.Client

const defaultTimeout = 5 * time.Second

// NewRedisConnection connects and pings once before returning.
func NewRedisConnection(info ConnectionInfo) (*Client, error) {
	timeout := info.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         info.Addr,
		Password:     info.Password,
		DB:           info.DB,
		MaxRetries:   info.MaxRetries,
		DialTimeout:  info.DialTimeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func IsNil(err error) bool {
	return errors.Is(err, goredis.Nil)
}

func Close(c *Client) {
	if c == nil {
		return
	}
	_ = c.Close()
}
