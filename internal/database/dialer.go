package database

import (
	"net"
	"strconv"

	"github.com/prenv/catalog-api/internal/config"
)

// DialerFor picks the dialer for the configured backend and returns a
// description of the target that is safe to log.
func DialerFor(cfg config.MongoDBConfig) (DialFunc, string) {
	if cfg.Backend == config.BackendMemory {
		return NewMemoryServer(cfg.Database).Dial, "memory/" + cfg.Database
	}
	if cfg.URI != "" {
		return MongoDialer(cfg), "MONGODB_URI/" + cfg.Database
	}
	return MongoDialer(cfg), net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)) + "/" + cfg.Database
}
