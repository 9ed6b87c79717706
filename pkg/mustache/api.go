package mustache

import (
	"io"
)

// Engine parses and renders templates. It owns the template cache, the
// default delimiters, the escape function and any helper values that every
// view can see.
//
// An Engine is safe for concurrent use once configured. RegisterHelper must
// not be called while renders are in progress.
type Engine struct {
	config  *Config
	cache   *TemplateCache
	tags    Tags
	escape  EscapeFunc
	helpers map[string]any
	logger  *Logger
}

// New creates a new engine with the global configuration and a cache of
// its own.
func New() *Engine {
	return NewWithConfig(GetGlobalConfig())
}

// NewWithConfig creates a new engine with the given configuration.
func NewWithConfig(config *Config) *Engine {
	config = NewConfigWithDefaults(config)
	e := &Engine{
		config:  config,
		tags:    config.tags(),
		escape:  EscapeHTML,
		helpers: make(map[string]any),
		logger:  GetLogger(),
	}
	if !config.DisableCache {
		e.cache = NewTemplateCache()
	}
	return e
}

// Option represents a configuration option for the engine.
type Option func(*Engine)

// WithConfig returns an option that replaces the engine configuration. It
// also resets the default tags and, if caching is disabled, drops the cache.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		config = NewConfigWithDefaults(config)
		e.config = config
		e.tags = config.tags()
		if config.DisableCache {
			e.cache = nil
		} else if e.cache == nil {
			e.cache = NewTemplateCache()
		}
	}
}

// WithCache returns an option that makes the engine use cache, which may be
// shared with other engines. A nil cache disables caching.
func WithCache(cache *TemplateCache) Option {
	return func(e *Engine) {
		e.cache = cache
	}
}

// WithTags returns an option that sets the default delimiters.
func WithTags(tags Tags) Option {
	return func(e *Engine) {
		e.tags = tags
	}
}

// WithEscaper returns an option that replaces the HTML escape function.
func WithEscaper(fn EscapeFunc) Option {
	return func(e *Engine) {
		if fn == nil {
			fn = NoEscape
		}
		e.escape = fn
	}
}

// WithHelpers returns an option that registers helper values.
func WithHelpers(helpers map[string]any) Option {
	return func(e *Engine) {
		for name, value := range helpers {
			e.RegisterHelper(name, value)
		}
	}
}

// WithLogger returns an option that sets the engine logger.
func WithLogger(logger *Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewWithOptions creates a new engine with the specified options.
func NewWithOptions(opts ...Option) *Engine {
	engine := New()
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// RegisterHelper makes value visible to every template rendered by the
// engine under name. Helpers sit below the view in the context chain, so a
// view key of the same name shadows them.
func (e *Engine) RegisterHelper(name string, value any) {
	e.helpers[name] = value
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Tags returns the engine's default delimiters.
func (e *Engine) Tags() Tags {
	return e.tags
}

// Cache returns the engine's template cache, or nil if caching is disabled.
func (e *Engine) Cache() *TemplateCache {
	return e.cache
}

// ClearCache removes all templates from the cache.
func (e *Engine) ClearCache() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

// Parse returns the token tree for template using the engine's default
// tags. Trees are cached by template text.
func (e *Engine) Parse(template string) ([]*Token, error) {
	return e.ParseWithTags(template, e.tags)
}

// ParseWithTags returns the token tree for template parsed with tags.
func (e *Engine) ParseWithTags(template string, tags Tags) ([]*Token, error) {
	key := cacheKey(template, tags)
	if e.cache != nil {
		if tokens, ok := e.cache.Get(key); ok {
			return tokens, nil
		}
	}

	tokens, err := ParseTemplate(template, tags)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		tokens = e.cache.Set(key, tokens)
		if e.logger.IsDebugMode() {
			e.logger.WithFields(Fields{
				"length":  len(template),
				"entries": e.cache.Size(),
			}).Debug("Cached parsed template")
		}
	}
	return tokens, nil
}

// DefaultEngine is the global default engine instance.
// It uses the global configuration.
var DefaultEngine = New()

// Module-level convenience functions that use the default engine.

// Render renders template with view and partials using the default engine.
func Render(template string, view any, partials Partials) (string, error) {
	return DefaultEngine.Render(template, view, partials)
}

// RenderTo renders template into w using the default engine.
func RenderTo(w io.Writer, template string, view any, partials Partials) error {
	return DefaultEngine.RenderTo(w, template, view, partials)
}

// Parse parses and caches template using the default engine.
func Parse(template string) ([]*Token, error) {
	return DefaultEngine.Parse(template)
}

// ClearCache clears the default engine's template cache.
func ClearCache() {
	DefaultEngine.ClearCache()
}
