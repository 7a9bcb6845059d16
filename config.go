package lrucached

import (
	"io"

	"github.com/facebookgo/stackerr"
	"github.com/rcrowley/go-metrics"

	"github.com/skipor/lrucached/cache"
	"github.com/skipor/lrucached/log"
)

// Config is parsed server configuration.
type Config struct {
	Addr           string
	LogDestination io.Writer
	LogLevel       log.Level
	Store          cache.Kind
	Capacity       int
	MaxItemSize    int
}

// NewServer makes server that stores items in new cache described by conf.
// Cache counters are registered in r.
// With debug log level, every cache entry transition is logged.
func NewServer(l log.Logger, conf Config, r metrics.Registry) (*Server, error) {
	store, err := cache.NewKind[string, Item](conf.Store, conf.Capacity)
	if err != nil {
		return nil, stackerr.Wrap(err)
	}
	if conf.LogLevel == log.DebugLevel {
		store = NewLoggingCache[string, Item](l.WithFields(log.Fields{"component": "cache"}), store)
	}
	return &Server{
		Addr: conf.Addr,
		Log:  l,
		ConnMeta: ConnMeta{
			Cache:       NewLockingCache(store, r),
			MaxItemSize: conf.MaxItemSize,
		},
	}, nil
}
