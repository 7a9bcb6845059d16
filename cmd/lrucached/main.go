package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"os/signal"
	"syscall"

	"github.com/rcrowley/go-metrics"

	"github.com/skipor/lrucached"
	"github.com/skipor/lrucached/cmd/lrucached/config"
	"github.com/skipor/lrucached/internal/tag"
	"github.com/skipor/lrucached/log"
)

const usage = `
Config values merge rules:
1) config file value overrides default
2) command line value overrides any
Options:
`

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s", usage)
		flag.PrintDefaults()
	}
}

func main() {
	conf := parseConfig()
	l := log.NewLogger(conf.LogLevel, conf.LogDestination)
	l.Debugf("Config: %#v", conf)
	if tag.Debug {
		l.Warn("Using debug build. It has more runtime checks and large performance overhead.")
	}

	registry := metrics.NewRegistry()
	s, err := lrucached.NewServer(l, conf, registry)
	if err != nil {
		l.Fatal("Server create error: ", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		l.Infof("Got %v. Shutting down.", <-sig)
		s.Close()
	}()

	l.Infof("Serve on %s.", s.Addr)
	err = s.ListenAndServe()
	if err != lrucached.ErrServerClosed {
		l.Fatal("Serve error: ", err)
	}
	metrics.WriteOnce(registry, conf.LogDestination)
	l.Info("Server closed.")
}

// parseConfig parses command flags, reads config file if any, returns merged config.
// Any error is fatal.
func parseConfig() lrucached.Config {
	l := log.NewLogger(log.DebugLevel, os.Stderr)
	flg := parseFlags()
	conf := config.Default()
	if flg.ConfigPath != "" {
		data, err := ioutil.ReadFile(flg.ConfigPath)
		if err != nil {
			l.Fatal("Config file read error: ", err)
		}
		fileConf, err := config.Unmarshal(data)
		if err != nil {
			l.Fatal("Config parse error: ", err)
		}
		config.Merge(conf, fileConf)
	}
	config.Merge(conf, &flg.Config)
	parsed, err := config.Parse(conf)
	if err != nil {
		l.Fatal(err)
	}
	return parsed
}

type Flags struct {
	ConfigPath string
	config.Config
}

func parseFlags() Flags {
	var f Flags
	flag.StringVar(&f.ConfigPath, "config", "", "path to json config")

	def := config.Default()
	usage := func(usage string, defVal interface{}) string {
		if _, ok := defVal.(string); ok {
			usage += fmt.Sprintf(" (default %q)", defVal)
		} else {
			usage += fmt.Sprintf(" (default %v)", defVal)
		}
		return usage
	}
	flag.StringVar(&f.Host, "host", "", usage("host address to bind", def.Host))
	flag.IntVar(&f.Port, "port", 0, usage("port num", def.Port))
	flag.StringVar(&f.LogDestination, "log-destination", "", usage("log destination: stderr, stdout or file path", def.LogDestination))
	flag.StringVar(&f.LogLevel, "log-level", "", usage("log level: debug, info, warn, error, fatal", def.LogLevel))
	flag.IntVar(&f.Capacity, "capacity", 0, usage("max number of stored items", def.Capacity))
	flag.StringVar(&f.MaxItemSize, "max-item-size", "", usage("max item size: 10m, 1024k", def.MaxItemSize))
	flag.StringVar(&f.Store, "store", "", usage("recency tracking store: indexed or scan", def.Store))
	flag.Parse()
	return f
}
