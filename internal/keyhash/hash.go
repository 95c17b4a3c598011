// Package keyhash provides FNV-1a based hash functions for store keys.
package keyhash

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/goccy/go-reflect"

	"github.com/karupanerura/sweepcache"
)

var (
	cacheMu sync.RWMutex

	// cache holds one hash function per key type name.
	cache = map[string]func(any) int{}
)

// For returns the hash function for the key type K.
// The returned function is shared by every caller asking for the same type.
// It panics if K is not a string or an integer type.
func For[K sweepcache.KeyConstraint]() func(any) int {
	var zero K
	name := reflect.TypeOf(zero).String()

	cacheMu.RLock()
	f, ok := cache[name]
	cacheMu.RUnlock()
	if ok {
		return f
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if f, ok := cache[name]; ok {
		return f
	}
	f = encoderFor(zero)
	cache[name] = f
	return f
}

// encoderFor returns a hash function that encodes values shaped like t.
func encoderFor(t any) func(any) int {
	switch t.(type) {
	case string:
		return func(v any) int {
			return sum([]byte(v.(string)))
		}
	case int:
		return func(v any) int { return sumUint64(uint64(v.(int))) }
	case int8:
		return func(v any) int { return sum([]byte{byte(v.(int8))}) }
	case int16:
		return func(v any) int { return sumUint64(uint64(v.(int16))) }
	case int32:
		return func(v any) int { return sumUint64(uint64(v.(int32))) }
	case int64:
		return func(v any) int { return sumUint64(uint64(v.(int64))) }
	case uint:
		return func(v any) int { return sumUint64(uint64(v.(uint))) }
	case uint8:
		return func(v any) int { return sum([]byte{v.(uint8)}) }
	case uint16:
		return func(v any) int { return sumUint64(uint64(v.(uint16))) }
	case uint32:
		return func(v any) int { return sumUint64(uint64(v.(uint32))) }
	case uint64:
		return func(v any) int { return sumUint64(v.(uint64)) }
	default:
		panic(fmt.Sprintf("unsupported key type: %T", t))
	}
}

func sumUint64(u uint64) int {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], u)
	return sum(b[:])
}

// sum never returns a negative value so callers can use it as a slice index modulo n.
func sum(b []byte) int {
	h := fnv.New64a()
	_, _ = h.Write(b)
	return int(h.Sum64() >> 1)
}
