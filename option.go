package storefront

// RequestOption customizes a single operation.
type RequestOption func(*requestConfig)

type requestConfig struct {
	selector FieldSelector
	pageSize int
}

// WithSelection substitutes the operation's default field selection. The
// composer still guarantees structurally required fields (entity ids,
// connection plumbing, mutation user errors) on top of whatever the
// selector chooses.
func WithSelection(sel FieldSelector) RequestOption {
	return func(cfg *requestConfig) {
		cfg.selector = sel
	}
}

// WithPageSize overrides the connection page size for this operation.
func WithPageSize(n int) RequestOption {
	return func(cfg *requestConfig) {
		cfg.pageSize = n
	}
}

func (c *Client) requestConfig(
	def FieldSelector,
	opts []RequestOption,
) requestConfig {
	cfg := requestConfig{
		selector: def,
		pageSize: c.pageSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.pageSize <= 0 {
		cfg.pageSize = DefaultPageSize
	}
	return cfg
}
