package cache

import (
	"fmt"
	"strings"
)

// GenerateKey creates a cache key with prefix and ID.
func GenerateKey(prefix string, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// GenerateKeyWithParams creates a cache key with multiple parameters.
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, param := range params {
		fmt.Fprintf(&b, ":%v", param)
	}
	return b.String()
}

func tagKey(tag string) string {
	return "tag:" + tag
}

// entryTagsKey holds the tags a single entry was stored with.
func entryTagsKey(key string) string {
	return "keytags:" + key
}

func tagVersionKey(tag string) string {
	return "tagver:" + tag
}
