package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

type Driver string

const (
	Mongo    Driver = "mongo"
	Postgres Driver = "postgres"
	SQLite   Driver = "sqlite"
)

const defaultMongoDB = "postboard"

var (
	ErrMissingURI    = errors.New("db: connection string is not configured")
	ErrUnknownScheme = errors.New("db: unsupported connection string scheme")
	errWrongBackend  = errors.New("db: store opened with another driver")
)

// Store is the shared connection handle. Exactly one of Base or Mongo is set,
// depending on Driver.
type Store struct {
	Driver Driver
	Base   *gorm.DB
	Mongo  *mongo.Database
}

// Gorm returns the relational handle or an error for a mongo store.
func (s *Store) Gorm() (*gorm.DB, error) {
	if s.Base == nil {
		return nil, errWrongBackend
	}
	return s.Base, nil
}

// Database returns the mongo database or an error for a gorm store.
func (s *Store) Database() (*mongo.Database, error) {
	if s.Mongo == nil {
		return nil, errWrongBackend
	}
	return s.Mongo, nil
}

// DriverFor picks the backend from the connection string scheme.
func DriverFor(uri string) (Driver, error) {
	switch {
	case uri == "":
		return "", ErrMissingURI
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		return Mongo, nil
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return Postgres, nil
	case strings.HasPrefix(uri, "sqlite://"), strings.HasPrefix(uri, "file:"):
		return SQLite, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScheme, RedactURI(uri))
}

// Dial opens a new Store for uri. It is the default DialFunc of Lazy.
func Dial(ctx context.Context, uri string) (*Store, error) {
	drv, err := DriverFor(uri)
	if err != nil {
		return nil, err
	}
	switch drv {
	case Mongo:
		return dialMongo(ctx, uri)
	case Postgres:
		return dialGorm(ctx, Postgres, postgres.Open(uri))
	default:
		return dialGorm(ctx, SQLite, sqlite.Open(strings.TrimPrefix(uri, "sqlite://")))
	}
}

func dialMongo(ctx context.Context, uri string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Store{Driver: Mongo, Mongo: client.Database(mongoDatabase(uri))}, nil
}

func mongoDatabase(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return defaultMongoDB
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return defaultMongoDB
}

func dialGorm(ctx context.Context, drv Driver, dialector gorm.Dialector) (*Store, error) {
	base, err := openWithRetry(ctx, dialector)
	if err != nil {
		return nil, err
	}
	sqlDB, _ := base.DB()
	if drv == SQLite {
		// in-memory databases live per connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(40)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	if err := base.Use(tracing.NewPlugin()); err != nil {
		log.Printf("db tracing plugin: %v", err)
	}
	return &Store{Driver: drv, Base: base}, nil
}

func openWithRetry(ctx context.Context, dialector gorm.Dialector) (*gorm.DB, error) {
	var last error
	sleep := time.Second
	for attempt := 1; ; attempt++ {
		db, err := gorm.Open(dialector, &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			if s, e := db.DB(); e == nil {
				if perr := pingWithTimeout(ctx, s, 2*time.Second); perr == nil {
					return db, nil
				} else {
					last = perr
				}
			} else {
				last = e
			}
		} else {
			last = err
		}

		log.Printf("db open attempt %d failed: %v", attempt, last)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("db open: %w (last error: %v)", ctx.Err(), last)
		case <-time.After(sleep):
		}
		if sleep < 8*time.Second {
			sleep *= 2
		}
	}
}

func pingWithTimeout(ctx context.Context, sqlDB *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("db ping timeout after %s", timeout)
		}
		return err
	}
	return nil
}

// RedactURI strips credentials from a connection string for logs.
func RedactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		if len(uri) > 48 {
			return uri[:48] + "…"
		}
		return uri
	}
	u.User = url.User(u.User.Username())
	return u.String()
}
