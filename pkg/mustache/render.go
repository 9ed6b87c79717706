package mustache

import (
	"fmt"
	"io"
	"strings"
)

// writer walks token trees for one top-level render. It carries the partial
// source so nested partials and lambda sub-renders see the same set.
type writer struct {
	engine   *Engine
	partials Partials
}

// Render renders template against view. view may be a *Context, in which case
// the template is rendered in that chain instead of a new root. partials may be
// nil.
func (e *Engine) Render(template string, view any, partials Partials) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = RecoverError(r)
			e.logger.WithField("error", err).Error("Render panicked")
		}
	}()

	e.logger.DebugTemplate(template, view)

	w := &writer{engine: e, partials: partials}
	var buf strings.Builder
	if err := w.render(&buf, template, e.rootContext(view), 0); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderTo renders template into out. Nothing is written if rendering fails.
func (e *Engine) RenderTo(out io.Writer, template string, view any, partials Partials) error {
	result, err := e.Render(template, view, partials)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, result)
	return err
}

// RenderTokens renders an already parsed tree. original must be the template
// text the tree was parsed from; lambda sections slice their raw text out of
// it. A nil ctx renders against an empty view.
func (e *Engine) RenderTokens(tokens []*Token, ctx *Context, partials Partials, original string) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = RecoverError(r)
		}
	}()

	if ctx == nil {
		ctx = e.rootContext(nil)
	}
	w := &writer{engine: e, partials: partials}
	var buf strings.Builder
	if err := w.renderTokens(&buf, tokens, ctx, original, 0); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// rootContext wraps view in a context chain. Registered helpers form the
// outermost frame.
func (e *Engine) rootContext(view any) *Context {
	if ctx, ok := view.(*Context); ok && ctx != nil {
		return ctx
	}
	if len(e.helpers) == 0 {
		return NewContext(view)
	}
	helpers := make(map[string]any, len(e.helpers))
	for name, value := range e.helpers {
		helpers[name] = value
	}
	return NewContext(helpers).Push(view)
}

// render parses template with the engine's default tags and renders it into
// buf. template becomes the original text for any lambda sections in it.
func (w *writer) render(buf *strings.Builder, template string, ctx *Context, depth int) error {
	tokens, err := w.engine.Parse(template)
	if err != nil {
		return err
	}
	return w.renderTokens(buf, tokens, ctx, template, depth)
}

func (w *writer) renderTokens(buf *strings.Builder, tokens []*Token, ctx *Context, original string, depth int) error {
	for _, tok := range tokens {
		var err error
		switch tok.Type {
		case TokenSection:
			err = w.renderSection(buf, tok, ctx, original, depth)
		case TokenInverted:
			err = w.renderInverted(buf, tok, ctx, original, depth)
		case TokenPartial:
			err = w.renderPartial(buf, tok, ctx, depth)
		case TokenUnescaped:
			value := w.lookup(ctx, tok.Value)
			if !isNil(value) {
				if _, isLambda := asLambda(value); !isLambda {
					buf.WriteString(FormatValue(value))
				}
			}
		case TokenName:
			value := w.lookup(ctx, tok.Value)
			if !isNil(value) {
				if _, isLambda := asLambda(value); !isLambda {
					buf.WriteString(w.engine.escape(FormatValue(value)))
				}
			}
		case TokenText:
			buf.WriteString(tok.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) lookup(ctx *Context, name string) any {
	value := ctx.Lookup(name)
	w.engine.logger.DebugLookup(name, value)
	return value
}

func (w *writer) renderSection(buf *strings.Builder, tok *Token, ctx *Context, original string, depth int) error {
	value := w.lookup(ctx, tok.Value)
	if !isTruthy(value) {
		return nil
	}

	if lambda, ok := asLambda(value); ok {
		return w.renderLambda(buf, lambda, tok, ctx, original, depth)
	}

	switch KindOf(value) {
	case KindSequence:
		return eachElement(value, func(elem any) error {
			return w.renderTokens(buf, tok.Children, ctx.Push(elem), original, depth)
		})
	case KindMapping, KindString:
		return w.renderTokens(buf, tok.Children, ctx.Push(value), original, depth)
	default:
		return w.renderTokens(buf, tok.Children, ctx, original, depth)
	}
}

// renderLambda hands the raw section text to lambda. The sub-render callback
// renders against ctx with the same partials.
func (w *writer) renderLambda(buf *strings.Builder, lambda Lambda, tok *Token, ctx *Context, original string, depth int) error {
	if original == "" || tok.SectionEnd > len(original) || tok.End > tok.SectionEnd {
		return &ConfigurationError{Message: "cannot use higher-order sections without the original template"}
	}

	text := original[tok.End:tok.SectionEnd]
	subRender := func(template string) (string, error) {
		var sub strings.Builder
		if err := w.render(&sub, template, ctx, depth); err != nil {
			return "", err
		}
		return sub.String(), nil
	}

	result, err := lambda(text, subRender)
	if err != nil {
		return &RenderError{Name: tok.Value, Cause: err}
	}
	buf.WriteString(result)
	return nil
}

func (w *writer) renderInverted(buf *strings.Builder, tok *Token, ctx *Context, original string, depth int) error {
	value := w.lookup(ctx, tok.Value)
	if !isTruthy(value) || isEmptySequence(value) {
		return w.renderTokens(buf, tok.Children, ctx, original, depth)
	}
	return nil
}

func (w *writer) renderPartial(buf *strings.Builder, tok *Token, ctx *Context, depth int) error {
	name := tok.Value
	logger := w.engine.logger

	var (
		text  string
		found bool
	)
	if w.partials != nil {
		text, found = w.partials.Partial(name)
	}
	if !found {
		strict := w.engine.config.StrictMode
		if !strict && !logger.IsDebugMode() {
			return nil
		}
		suggestion := ""
		if w.partials != nil {
			suggestion = suggestPartial(name, w.partials)
		}
		if strict {
			return &MissingPartialError{Name: name, Suggestion: suggestion}
		}
		logger.WithFields(Fields{"partial": name, "suggestion": suggestion}).Debug("Partial not found")
		return nil
	}

	if limit := w.engine.config.MaxPartialDepth; limit > 0 && depth >= limit {
		return &RenderError{
			Name:  name,
			Cause: fmt.Errorf("partials nested deeper than %d", limit),
		}
	}

	tokens, err := w.engine.Parse(text)
	if err != nil {
		return WithContext(err, "parse partial", map[string]interface{}{"partial": name})
	}
	return w.renderTokens(buf, tokens, ctx, text, depth+1)
}
