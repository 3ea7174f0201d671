/*
This command builds a skipper plugin that provides the Surlex and
SurlexPrefix predicates and the surlexCaptures filter.

Build it as a shared object and pass it to skipper:

	go build -buildmode=plugin -o surlex.so ./cmd/surlexplugin
	skipper -plugindir . -predicate-plugin "surlex macros=/etc/surlex/macros.yaml"

The plugin accepts the following options:

	macros=<file>            registers the macros of a YAML or JSON file globally
	prefix                   InitPredicate returns SurlexPrefix instead of Surlex
	max-entries=<n>          limits the number of cached compiled patterns
	metrics=<kind>           collects the cache metrics: codahale, prometheus or all
	metrics-listener=<addr>  serves the collected metrics at /metrics
*/
package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/zalando/skipper/filters"
	"github.com/zalando/skipper/routing"

	"github.com/zalando/surlex/compilecache"
	"github.com/zalando/surlex/macros"
	"github.com/zalando/surlex/metrics"
	"github.com/zalando/surlex/predicates/surlexpath"
)

type options struct {
	macroFiles      []string
	prefix          bool
	maxEntries      int
	metricsKind     metrics.Kind
	metricsListener string
}

var (
	cacheOnce sync.Once
	cache     *compilecache.Cache
)

func parseOptions(opts []string) (options, error) {
	var o options
	for _, opt := range opts {
		k, v, _ := strings.Cut(opt, "=")
		switch k {
		case "macros":
			if v == "" {
				return options{}, fmt.Errorf("missing macros file")
			}

			o.macroFiles = append(o.macroFiles, v)
		case "prefix":
			o.prefix = true
		case "max-entries":
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return options{}, fmt.Errorf("invalid max-entries: %q", v)
			}

			o.maxEntries = n
		case "metrics":
			switch v {
			case "codahale", "prometheus", "all":
				o.metricsKind = metrics.ParseMetricsKind(v)
			default:
				return options{}, fmt.Errorf("invalid metrics kind: %q", v)
			}
		case "metrics-listener":
			if v == "" {
				return options{}, fmt.Errorf("missing metrics listener address")
			}

			o.metricsListener = v
		default:
			return options{}, fmt.Errorf("unknown option: %q", opt)
		}
	}

	if o.metricsListener != "" && o.metricsKind == metrics.UnkownKind {
		o.metricsKind = metrics.CodaHaleKind
	}

	return o, nil
}

func newMetrics(o options) metrics.Metrics {
	if o.metricsKind == metrics.UnkownKind {
		return metrics.Void
	}

	return metrics.New(metrics.Options{Format: o.metricsKind})
}

func serveMetrics(address string, m metrics.Metrics) {
	log.Infof("Surlex metrics listener on %s/metrics", address)
	if err := http.ListenAndServe(address, metrics.NewHandler(m)); err != nil {
		log.Errorf("Failed to start surlex metrics listener on %s: %v", address, err)
	}
}

func newCache(o options, m metrics.Metrics) *compilecache.Cache {
	return compilecache.New(compilecache.Options{MaxEntries: o.maxEntries, Metrics: m})
}

func initialize(opts []string) (options, error) {
	o, err := parseOptions(opts)
	if err != nil {
		return options{}, err
	}

	for _, f := range o.macroFiles {
		if err := macros.RegisterFile(f); err != nil {
			return options{}, err
		}

		log.Infof("Registered surlex macros from %s", f)
	}

	// the predicates and the filter share the cache, the first call decides
	// its size and metrics
	cacheOnce.Do(func() {
		m := newMetrics(o)
		if o.metricsListener != "" {
			go serveMetrics(o.metricsListener, m)
		}

		cache = newCache(o, m)
	})

	return o, nil
}

func InitPredicate(opts []string) (routing.PredicateSpec, error) {
	o, err := initialize(opts)
	if err != nil {
		return nil, err
	}

	if o.prefix {
		return surlexpath.NewPrefix(cache), nil
	}

	return surlexpath.New(cache), nil
}

func InitFilter(opts []string) (filters.Spec, error) {
	if _, err := initialize(opts); err != nil {
		return nil, err
	}

	return surlexpath.NewCaptures(cache), nil
}

func main() {}
