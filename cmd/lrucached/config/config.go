package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/facebookgo/stackerr"

	"github.com/skipor/lrucached"
	"github.com/skipor/lrucached/cache"
	"github.com/skipor/lrucached/internal/util"
	"github.com/skipor/lrucached/log"
)

type Config struct {
	Port           int    `json:"port,omitempty"`
	Host           string `json:"host,omitempty"`
	LogDestination string `json:"log-destination,omitempty"` // Stdout, stderr, or filepath.
	LogLevel       string `json:"log-level,omitempty"`
	// Capacity is max number of stored items.
	Capacity int `json:"capacity,omitempty"`
	// Size values 10m, 1024k, 1000000b
	MaxItemSize string `json:"max-item-size,omitempty"`
	Store       string `json:"store,omitempty"` // Indexed or scan.
}

func Default() *Config {
	return &Config{
		Port:           11211,
		Host:           "",
		LogDestination: "stderr",
		LogLevel:       "info",
		Capacity:       1 << 16,
		MaxItemSize:    "1m",
		Store:          string(cache.Indexed),
	}
}

func Parse(conf *Config) (mconf lrucached.Config, err error) {
	mconf.LogDestination, err = logDestination(conf.LogDestination)
	if err != nil {
		err = stackerr.Newf("Log destination open error: %v", err)
		return
	}
	mconf.LogLevel, err = log.LevelFromString(conf.LogLevel)
	if err != nil {
		err = stackerr.Newf("Log level parse error: %v", err)
		return
	}
	mconf.Store, err = cache.ParseKind(conf.Store)
	if err != nil {
		err = stackerr.Newf("Store parse error: %v", err)
		return
	}
	if conf.Capacity <= 0 || conf.Capacity > cache.MaxCapacity {
		err = stackerr.Newf("Capacity should be in [1, %v], but: %v.", cache.MaxCapacity, conf.Capacity)
		return
	}
	mconf.Capacity = conf.Capacity
	var maxItemSize int64
	maxItemSize, err = parseSize(conf.MaxItemSize)
	if err != nil {
		err = stackerr.Newf("Max item size parse error: %v", err)
		return
	}
	if maxItemSize <= 0 {
		err = stackerr.Newf("Max item size should be positive, but: %v.", conf.MaxItemSize)
		return
	}
	if maxItemSize > lrucached.MaxItemSize {
		err = stackerr.Newf("Too large max item size.")
		return
	}
	mconf.MaxItemSize = int(maxItemSize)
	mconf.Addr = net.JoinHostPort(conf.Host, strconv.Itoa(conf.Port))
	return
}

// Merge overwrites def values with non zero override values.
func Merge(def, override *Config) {
	defVal := reflect.ValueOf(def).Elem()
	overrideVal := reflect.ValueOf(override).Elem()
	for i, end := 0, defVal.NumField(); i < end; i++ {
		overrideVal := overrideVal.Field(i)
		if !util.IsZeroVal(overrideVal) {
			defVal.Field(i).Set(overrideVal)
		}
	}
}

func Marshal(conf *Config) []byte {
	data, err := json.MarshalIndent(conf, "", "  ")
	if err != nil {
		panic(err)
	}
	return data
}

func Unmarshal(data []byte) (*Config, error) {
	conf := &Config{}
	err := json.Unmarshal(data, conf)
	if err != nil {
		return nil, stackerr.Wrap(err)
	}
	return conf, nil
}

func parseSize(s string) (size int64, err error) {
	if len(s) < 2 {
		err = errors.New("Invalid size format.")
		return
	}
	sep := len(s) - 1
	sizeStr := s[:sep]
	exponentStr := s[sep:]
	var exponent uint32
	switch strings.ToLower(exponentStr) {
	case "b":
		exponent = 0
	case "k":
		exponent = 10
	case "m":
		exponent = 20
	case "g":
		exponent = 30
	default:
		err = errors.New("Invalid exponent. Only 'b', 'k', 'm', 'g' allowed.")
		return
	}
	size, err = strconv.ParseInt(sizeStr, 10, 31)
	if err != nil {
		err = fmt.Errorf("Size parse error: %s", err)
		return
	}
	size <<= exponent
	return
}

func logDestination(dest string) (w io.Writer, err error) {
	switch strings.ToLower(dest) {
	case "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		w, err = os.OpenFile(dest, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	}
	return
}
