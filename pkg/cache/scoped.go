package cache

// ScopedKeyer prefixes every key of an inner Keyer, keeping entries of
// different releases or deployments apart in a shared Redis or Mongo
// backend:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), buildinfo.CacheScope())
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (or the default keyer if nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) DatasetKey(source string, opts DatasetKeyOpts) string {
	return k.prefix + k.inner.DatasetKey(source, opts)
}

func (k *ScopedKeyer) PositionsKey(datasetHash string, opts PositionsKeyOpts) string {
	return k.prefix + k.inner.PositionsKey(datasetHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(inputHash, opts)
}
