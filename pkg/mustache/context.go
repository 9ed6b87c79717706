package mustache

import "strings"

// Context is one frame of the chain of views a template is rendered against.
// Names that are not found in a frame's view are looked up in its parent.
//
// A Context memoizes lookups and is not safe for concurrent use. Each render
// builds its own chain, so this only matters when a caller shares one.
type Context struct {
	view   any
	parent *Context
	cache  map[string]any
}

// NewContext returns a root context over view.
func NewContext(view any) *Context {
	return &Context{
		view:  view,
		cache: map[string]any{".": view},
	}
}

// Push returns a new context over view whose parent is c. c is not modified.
func (c *Context) Push(view any) *Context {
	child := NewContext(view)
	child.parent = c
	return child
}

// View returns the view of this frame.
func (c *Context) View() any {
	return c.view
}

// Parent returns the enclosing frame, or nil for a root context.
func (c *Context) Parent() *Context {
	return c.parent
}

// Lookup returns the value of name, walking up the chain until a frame yields
// a non-nil value. Dotted names resolve each segment in turn within a frame.
// The name "." is the current view. Computed values are invoked on every call.
// A nil result means the name is absent.
func (c *Context) Lookup(name string) any {
	value, ok := c.cache[name]
	if !ok {
		dotted := strings.Index(name, ".") > 0
		for ctx := c; ctx != nil; ctx = ctx.parent {
			if dotted {
				value = ctx.view
				for _, part := range strings.Split(name, ".") {
					if isNil(value) {
						break
					}
					value = property(value, part)
				}
			} else {
				value = property(ctx.view, name)
			}

			if !isNil(value) {
				break
			}
		}
		c.cache[name] = value
	}

	return invokeComputed(value, c.view)
}
