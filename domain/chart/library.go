package chart

// Library is the loaded chart runtime handed to every draw call. Source is
// empty when the runtime is referenced by URL only.
type Library struct {
	URL     string
	Version string
	Source  []byte
}

// Inline reports whether the runtime source is available for embedding
func (l *Library) Inline() bool {
	return l != nil && len(l.Source) > 0
}
