package cache

// ScopedKeyer wraps a Keyer with a prefix so several workspaces can share
// one cache backend without key collisions.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "ws:"+Hash([]byte(root))[:12]+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// QueryKey generates a prefixed query result key.
func (k *ScopedKeyer) QueryKey(graphHash, query string, args ...string) string {
	return k.prefix + k.inner.QueryKey(graphHash, query, args...)
}
