package tsruntime

// runtimeOptions holds configuration resolved by NewRuntime's functional
// options, following the teacher's LoopOption pattern (options.go).
type runtimeOptions struct {
	logger        Logger
	metrics       *Metrics
	heapOptions   []HeapOption
	backend       Backend
	strictGC      bool
}

// Option configures a Runtime instance.
type Option interface {
	applyRuntime(*runtimeOptions) error
}

type optionFunc func(*runtimeOptions) error

func (f optionFunc) applyRuntime(o *runtimeOptions) error { return f(o) }

// WithLogger sets the structured [Logger] used for GC, timer, promise, and
// loader diagnostics. Defaults to a no-op logger.
func WithLogger(logger Logger) Option {
	return optionFunc(func(o *runtimeOptions) error {
		o.logger = logger
		return nil
	})
}

// WithMetrics attaches a [Metrics] collector to the runtime.
func WithMetrics(m *Metrics) Option {
	return optionFunc(func(o *runtimeOptions) error {
		o.metrics = m
		return nil
	})
}

// WithBackend supplies the embedder's event-loop [Backend]. Defaults to a
// fresh [LoopBackend].
func WithBackend(b Backend) Option {
	return optionFunc(func(o *runtimeOptions) error {
		o.backend = b
		return nil
	})
}

// WithHeapOptions forwards options to the underlying [Heap] constructor.
func WithHeapOptions(opts ...HeapOption) Option {
	return optionFunc(func(o *runtimeOptions) error {
		o.heapOptions = append(o.heapOptions, opts...)
		return nil
	})
}

// WithStrictGC forces a full mark-and-sweep [Collector.Collect] after every
// allocation. Intended for tests exercising P1-P3 under maximum collection
// pressure; never use in production (it defeats the point of reference
// counting as the normal reclamation route).
func WithStrictGC(enabled bool) Option {
	return optionFunc(func(o *runtimeOptions) error {
		o.strictGC = enabled
		return nil
	})
}

func resolveOptions(opts []Option) (*runtimeOptions, error) {
	cfg := &runtimeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyRuntime(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.logger == nil {
		cfg.logger = NewNoOpLogger()
	}
	if cfg.metrics == nil {
		cfg.metrics = NewMetrics()
	}
	return cfg, nil
}

// HeapOption configures a [Heap] instance.
type HeapOption interface {
	applyHeap(*heapOptions) error
}

type heapOptionFunc func(*heapOptions) error

func (f heapOptionFunc) applyHeap(o *heapOptions) error { return f(o) }

type heapOptions struct {
	sizeClasses      []int
	defaultSlotCount int
	logger           Logger
	metrics          *Metrics
}

// WithSizeClasses overrides the default power-of-two size classes (32B to
// 4KiB). Values must be ascending powers of two.
func WithSizeClasses(classes ...int) HeapOption {
	return heapOptionFunc(func(o *heapOptions) error {
		o.sizeClasses = classes
		return nil
	})
}

// WithDefaultSlotCount sets how many slots a newly allocated [Cluster]
// holds (spec.md describes clusters as "contiguous arena sized around
// 512 KiB"; the slot count is derived from that target divided by slot
// size unless overridden here).
func WithDefaultSlotCount(n int) HeapOption {
	return heapOptionFunc(func(o *heapOptions) error {
		o.defaultSlotCount = n
		return nil
	})
}

func resolveHeapOptions(opts []HeapOption) (*heapOptions, error) {
	cfg := &heapOptions{
		sizeClasses:      defaultSizeClasses,
		defaultSlotCount: 0, // derived per-class when zero
		logger:           NewNoOpLogger(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyHeap(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
