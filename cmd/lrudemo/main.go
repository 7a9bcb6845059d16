// lrudemo replays put/get sequence on LRU cache and prints cache state after every step.
// Recency order is printed from least to most recently used.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/skipor/lrucached"
	"github.com/skipor/lrucached/cache"
	"github.com/skipor/lrucached/log"
)

type step struct {
	put   bool
	key   string
	value int
}

func put(key string, value int) step { return step{put: true, key: key, value: value} }
func get(key string) step            { return step{key: key} }

var scenario = []step{
	put("A", 10),
	put("B", 20),
	get("A"),
	get("B"),
	put("C", 30),
	get("A"),
	get("B"),
	get("C"),
}

func main() {
	capacity := flag.Int("capacity", 2, "cache capacity")
	store := flag.String("store", string(cache.Indexed), "recency tracking store: indexed or scan")
	verbose := flag.Bool("v", false, "log every cache entry transition")
	flag.Parse()

	level := log.InfoLevel
	if *verbose {
		level = log.DebugLevel
	}
	l := log.NewLogger(level, os.Stderr)
	kind, err := cache.ParseKind(*store)
	if err != nil {
		l.Fatal(err)
	}
	c, err := cache.NewKind[string, int](kind, *capacity)
	if err != nil {
		l.Fatal(err)
	}
	run(os.Stdout, lrucached.NewLoggingCache[string, int](l, c), scenario)
}

func run(w io.Writer, c cache.Cache[string, int], steps []step) {
	fmt.Fprintf(w, "capacity %v: %v\n", c.Capacity(), c.Keys())
	for _, s := range steps {
		if s.put {
			c.Put(s.key, s.value)
			fmt.Fprintf(w, "put(%s, %v): %v\n", s.key, s.value, c.Keys())
			continue
		}
		v, ok := c.Get(s.key)
		result := "absent"
		if ok {
			result = fmt.Sprint(v)
		}
		fmt.Fprintf(w, "get(%s) = %s: %v\n", s.key, result, c.Keys())
	}
}
