package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Driver        string // redis, mongo, sqlite, postgres or memory
	RedisAddr     string
	RedisPassword string
	MongoURI      string
	MongoDBName   string
	SQLDSN        string
	Prefix        string
	TTL           time.Duration
}

// Open builds the Channel named by cfg.Driver, namespaced by cfg.Prefix. The
// returned close func releases the underlying connection.
func Open(ctx context.Context, cfg Config) (Channel, func() error, error) {
	ch, closeFn, err := openDriver(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return WithPrefix(ch, cfg.Prefix), closeFn, nil
}

func openDriver(ctx context.Context, cfg Config) (Channel, func() error, error) {
	switch cfg.Driver {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		return NewRedisChannel(client, cfg.TTL), client.Close, nil

	case "mongo":
		db, err := ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		ch := NewMongoChannel(db)
		if err := ch.CreateIndexes(ctx, cfg.TTL); err != nil {
			_ = ch.Close(ctx)
			return nil, nil, err
		}
		return ch, func() error { return ch.Close(context.Background()) }, nil

	case string(DialectSQLite), string(DialectPostgres):
		ch, err := OpenSQLChannel(Dialect(cfg.Driver), cfg.SQLDSN)
		if err != nil {
			return nil, nil, err
		}
		return ch, ch.Close, nil

	case "memory", "":
		return NewMemoryChannel(), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown channel driver %q", cfg.Driver)
}
