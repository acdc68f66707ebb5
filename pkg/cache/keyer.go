package cache

// Keyer derives cache keys for graph query results.
type Keyer interface {
	// QueryKey returns the key for the result of query with the given
	// arguments, computed against the graph with fingerprint graphHash.
	QueryKey(graphHash, query string, args ...string) string
}

// DefaultKeyer produces keys of the form "query:<name>:<graph>:<digest>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// QueryKey implements [Keyer].
func (DefaultKeyer) QueryKey(graphHash, query string, args ...string) string {
	return hashKey("query:"+query, graphHash, args...)
}
