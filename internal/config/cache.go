package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache placed in front of
// public listing reads.  When Enabled is false or no Redis client is
// configured, caching is disabled.  Routes booking availability depends on
// are never cached, so the TTL only bounds staleness of catalogue data.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string // route | method_route | method_route_query | route_query
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables.  All methods are upper-cased.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "tripadvisor:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range splitList(s) {
		m[strings.ToUpper(p)] = true
	}
	return m
}
