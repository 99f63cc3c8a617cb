package store

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Backend names accepted by OpenRepo.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendRemote   = "remote"
	BackendFile     = "file"
	BackendMemory   = "memory"
)

// Backends lists every backend name.
var Backends = []string{
	BackendSQLite, BackendPostgres, BackendRedis, BackendMongo,
	BackendRemote, BackendFile, BackendMemory,
}

// Options selects and configures a backend.
type Options struct {
	Backend string

	DBPath      string // sqlite
	PostgresDSN string // postgres

	RedisAddr     string
	RedisPassword string
	RedisPrefix   string

	MongoURI string
	MongoDB  string

	RemoteURL string
	RemotePIN string

	FilePath string

	// Seed appends the bundled bank as a read-only fallback.
	Seed bool
}

// OpenRepo opens the configured backend and wraps it in a Chain.
func OpenRepo(ctx context.Context, opts Options, log logrus.FieldLogger) (*Chain, error) {
	primary, err := openBackend(ctx, opts)
	if err != nil {
		return nil, err
	}
	log.WithField("backend", opts.Backend).Debug("Store opened")

	if opts.Seed {
		return NewChain(log, primary, Bundled()), nil
	}
	return NewChain(log, primary), nil
}

func openBackend(ctx context.Context, opts Options) (Repo, error) {
	switch opts.Backend {
	case BackendSQLite, "":
		path := opts.DBPath
		if path == "" {
			var err error
			if path, err = DefaultDBPath(); err != nil {
				return nil, fmt.Errorf("resolve database path: %w", err)
			}
		}
		return Open(path)
	case BackendPostgres:
		if opts.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres backend needs IPQUIZ_PG_DSN")
		}
		return OpenPostgres(ctx, opts.PostgresDSN)
	case BackendRedis:
		return OpenRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisPrefix)
	case BackendMongo:
		if opts.MongoURI == "" {
			return nil, fmt.Errorf("mongo backend needs IPQUIZ_MONGO_URI")
		}
		return OpenMongo(ctx, opts.MongoURI, opts.MongoDB)
	case BackendRemote:
		if opts.RemoteURL == "" {
			return nil, fmt.Errorf("remote backend needs IPQUIZ_REMOTE_URL")
		}
		return NewRemoteStore(opts.RemoteURL, opts.RemotePIN, nil), nil
	case BackendFile:
		path := opts.FilePath
		if path == "" {
			var err error
			if path, err = DefaultFilePath(); err != nil {
				return nil, fmt.Errorf("resolve file path: %w", err)
			}
		}
		return NewFileStore(path), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Backend)
	}
}
