package vectordb

// Options is the shared configuration block engines embed.
type Options struct {
	EngineType EngineType
	// TopK is the default result count when a search does not set one.
	TopK int
	// MinScore drops results the engine scores below this threshold, on the
	// engine's own scale. Zero disables the cut.
	MinScore float64
	// Dimension must match the embedding model when the engine needs the
	// vector width up front (Milvus collection schemas).
	Dimension int
}

// Option configures an engine at construction.
type Option func(*Options)

func WithEngine(engine EngineType) Option {
	return func(o *Options) {
		o.EngineType = engine
	}
}

func WithTopK(k int) Option {
	return func(o *Options) {
		o.TopK = k
	}
}

func WithMinScore(score float64) Option {
	return func(o *Options) {
		o.MinScore = score
	}
}

func WithDimension(dimension int) Option {
	return func(o *Options) {
		o.Dimension = dimension
	}
}
