package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/karupanerura/sweepcache"
)

const envPrefix = "SWEEPCACHE_"

var errInvalidFlag = errors.New("invalid configuration")

type config struct {
	addr         string
	cache        sweepcache.Config
	shards       int
	maxBodyBytes int64
	logLevel     logrus.Level
	logFormat    string
}

// parseConfig reads the process configuration from args, falling back to environment variables.
// A flag given on the command line wins over its environment variable.
func parseConfig(args []string, getenv func(string) string, output io.Writer) (config, error) {
	fs := flag.NewFlagSet("sweepcache", flag.ContinueOnError)
	fs.SetOutput(output)

	env := func(name, d string) string {
		return defaultString(getenv(envPrefix+name), d)
	}
	addr := fs.String("addr", env("ADDR", ":8081"), "listen address")
	ttl := fs.String("ttl", env("TTL", sweepcache.DefaultTTL.String()), "time to live of an entry")
	shards := fs.String("shards", env("SHARDS", "256"), "number of store shards")
	maxBodyBytes := fs.String("max-body-bytes", env("MAX_BODY_BYTES", "0"), "maximum size of a write body, 0 for unlimited")
	logLevel := fs.String("log-level", env("LOG_LEVEL", "info"), "log level")
	logFormat := fs.String("log-format", env("LOG_FORMAT", "text"), "log format: text or json")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	cfg := config{addr: *addr}

	d, err := time.ParseDuration(*ttl)
	if err != nil {
		return config{}, fmt.Errorf("%w: ttl: %w", errInvalidFlag, err)
	}
	cfg.cache = sweepcache.Config{TTL: d}
	if err := cfg.cache.Validate(); err != nil {
		return config{}, err
	}

	cfg.shards, err = strconv.Atoi(*shards)
	if err != nil {
		return config{}, fmt.Errorf("%w: shards: %w", errInvalidFlag, err)
	}
	if cfg.shards <= 0 {
		return config{}, fmt.Errorf("%w: shards must be positive: %d", errInvalidFlag, cfg.shards)
	}

	cfg.maxBodyBytes, err = strconv.ParseInt(*maxBodyBytes, 10, 64)
	if err != nil {
		return config{}, fmt.Errorf("%w: max-body-bytes: %w", errInvalidFlag, err)
	}

	cfg.logLevel, err = logrus.ParseLevel(*logLevel)
	if err != nil {
		return config{}, fmt.Errorf("%w: log-level: %w", errInvalidFlag, err)
	}

	switch *logFormat {
	case "text", "json":
		cfg.logFormat = *logFormat
	default:
		return config{}, fmt.Errorf("%w: log-format must be text or json: %q", errInvalidFlag, *logFormat)
	}

	return cfg, nil
}

func (c config) formatter() logrus.Formatter {
	if c.logFormat == "json" {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{FullTimestamp: true}
}

func defaultString(v, d string) string {
	if v == "" {
		return d
	}
	return v
}
