package redis

import (
	"strconv"
	"strings"
)

const (
	// KeyPrefixProfile is the prefix for cached profiles
	KeyPrefixProfile = "socialhub:profile:"
	// KeyPrefixSearch is the prefix for cached search results
	KeyPrefixSearch = "socialhub:search:"
)

// ProfileKey returns the Redis key for a cached profile by ID
func ProfileKey(id uint) string {
	return KeyPrefixProfile + strconv.FormatUint(uint64(id), 10)
}

// SearchKey returns the Redis key for a cached search. Queries that differ
// only in case or surrounding whitespace share a key.
func SearchKey(query string) string {
	return KeyPrefixSearch + strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
