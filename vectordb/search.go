package vectordb

// SearchOptions narrows a single search call.
type SearchOptions struct {
	// Collection names the record set to search.
	Collection string
	// TopK caps the result count for this call, overriding the engine
	// default when positive.
	TopK int
	// Meta requires exact matches on every listed metadata key.
	Meta map[string]string
	// Include keeps only records whose text contains the substring.
	Include string
	// Exclude drops records whose text contains the substring.
	Exclude string
}

// SearchOption narrows one Search call.
type SearchOption func(*SearchOptions)

func SearchWithCollection(name string) SearchOption {
	return func(o *SearchOptions) {
		o.Collection = name
	}
}

func SearchWithTopK(topK int) SearchOption {
	return func(o *SearchOptions) {
		o.TopK = topK
	}
}

func SearchWithMeta(meta map[string]string) SearchOption {
	return func(o *SearchOptions) {
		o.Meta = meta
	}
}

func SearchWithInclude(substr string) SearchOption {
	return func(o *SearchOptions) {
		o.Include = substr
	}
}

func SearchWithExclude(substr string) SearchOption {
	return func(o *SearchOptions) {
		o.Exclude = substr
	}
}
