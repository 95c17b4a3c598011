package main

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/karupanerura/sweepcache"
)

func envOf(m map[string]string) func(string) string {
	return func(name string) string {
		return m[name]
	}
}

func TestParseConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		env  map[string]string
		want config
	}{
		{
			name: "defaults",
			want: config{
				addr:      ":8081",
				cache:     sweepcache.Config{TTL: 10 * time.Second},
				shards:    256,
				logLevel:  logrus.InfoLevel,
				logFormat: "text",
			},
		},
		{
			name: "environment",
			env: map[string]string{
				"SWEEPCACHE_ADDR":           "127.0.0.1:9000",
				"SWEEPCACHE_TTL":            "1m",
				"SWEEPCACHE_SHARDS":         "16",
				"SWEEPCACHE_MAX_BODY_BYTES": "1024",
				"SWEEPCACHE_LOG_LEVEL":      "debug",
				"SWEEPCACHE_LOG_FORMAT":     "json",
			},
			want: config{
				addr:         "127.0.0.1:9000",
				cache:        sweepcache.Config{TTL: time.Minute},
				shards:       16,
				maxBodyBytes: 1024,
				logLevel:     logrus.DebugLevel,
				logFormat:    "json",
			},
		},
		{
			name: "flags win over environment",
			args: []string{"-ttl", "30s", "-shards", "1", "-log-level", "warn"},
			env: map[string]string{
				"SWEEPCACHE_TTL":       "1m",
				"SWEEPCACHE_SHARDS":    "16",
				"SWEEPCACHE_LOG_LEVEL": "debug",
			},
			want: config{
				addr:      ":8081",
				cache:     sweepcache.Config{TTL: 30 * time.Second},
				shards:    1,
				logLevel:  logrus.WarnLevel,
				logFormat: "text",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseConfig(tt.args, envOf(tt.env), io.Discard)
			if err != nil {
				t.Fatal(err)
			}
			if df := cmp.Diff(tt.want, got, cmp.AllowUnexported(config{})); df != "" {
				t.Errorf("config diff=%s", df)
			}
		})
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		env  map[string]string
		want error
	}{
		{name: "unparsable ttl", args: []string{"-ttl", "soon"}, want: errInvalidFlag},
		{name: "zero ttl", args: []string{"-ttl", "0s"}, want: sweepcache.ErrInvalidTTL},
		{name: "negative ttl from environment", env: map[string]string{"SWEEPCACHE_TTL": "-1s"}, want: sweepcache.ErrInvalidTTL},
		{name: "zero shards", args: []string{"-shards", "0"}, want: errInvalidFlag},
		{name: "unparsable shards", env: map[string]string{"SWEEPCACHE_SHARDS": "many"}, want: errInvalidFlag},
		{name: "unparsable max body", args: []string{"-max-body-bytes", "1k"}, want: errInvalidFlag},
		{name: "unknown log level", args: []string{"-log-level", "loud"}, want: errInvalidFlag},
		{name: "unknown log format", args: []string{"-log-format", "xml"}, want: errInvalidFlag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := parseConfig(tt.args, envOf(tt.env), io.Discard)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseConfig_UnknownFlag(t *testing.T) {
	t.Parallel()

	if _, err := parseConfig([]string{"-verbose"}, envOf(nil), io.Discard); err == nil {
		t.Error("expected an error for an unknown flag")
	}
}

func TestFormatter(t *testing.T) {
	t.Parallel()

	if _, ok := (config{logFormat: "json"}).formatter().(*logrus.JSONFormatter); !ok {
		t.Error("json format should use JSONFormatter")
	}
	if f, ok := (config{logFormat: "text"}).formatter().(*logrus.TextFormatter); !ok || !f.FullTimestamp {
		t.Error("text format should use TextFormatter with full timestamps")
	}
}
