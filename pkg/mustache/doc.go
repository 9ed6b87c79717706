// Package mustache provides a logic-less template engine for text and HTML.
//
// Templates are plain text with tags in double curly braces. A template is
// parsed once into a tree of tokens, cached by its text, and rendered against
// any Go value: maps, structs, slices and functions.
//
// # Quick Start
//
// The simplest way to render is through the package-level functions:
//
//	out, err := mustache.Render("Hello {{name}}!", map[string]any{
//	    "name": "World",
//	}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Template Syntax
//
// Variables:
//
//	{{name}}                    - HTML-escaped value
//	{{{name}}} or {{&name}}     - Raw value
//	{{customer.address.city}}   - Dotted path
//	{{items.0.name}}            - Sequence index
//	{{.}}                       - The current value
//
// Sections:
//
//	{{#items}}...{{/items}}     - Repeat for each element, or render once for a
//	                              truthy value
//	{{^items}}...{{/items}}     - Render when falsy or an empty sequence
//
// Other tags:
//
//	{{>header}}                 - Include a partial in the current context
//	{{! comment }}              - Renders nothing
//	{{=<% %>=}}                 - Change the delimiters for the rest of the template
//
// A line that holds nothing but whitespace and a section, partial, comment or
// delimiter tag is removed from the output entirely.
//
// # Views
//
// Names resolve against a chain of contexts. Each section pushes a new frame,
// and a name missing from a frame is looked up in the frames below it.
// Missing names render as nothing; they are never an error.
//
// Values that take part in rendering:
//
//   - map[string]T and structs: keys, exported fields (case-insensitively) and
//     zero-argument methods
//   - slices and arrays: iterated by sections
//   - func() any, func() string and Computed: called on every lookup
//   - Lambda: a section value that receives the raw section text and a
//     RenderFunc, and returns the text to output
//
// # Engines
//
// An Engine owns a template cache, the default delimiters, an escape function
// and helper values visible to every template:
//
//	engine := mustache.NewWithOptions(
//	    mustache.WithHelpers(helpers.Defaults()),
//	    mustache.WithEscaper(mustache.NoEscape),
//	)
//	out, err := engine.Render(tmpl, view, mustache.PartialMap{"header": "..."})
//
// Partials come from a PartialMap, a PartialFunc or the files of an fs.FS via
// FSPartials. In strict mode a missing partial is an error that names the
// closest known partial.
//
// # Configuration
//
// DefaultEngine reads its settings from the environment:
//
//	MUSTACHE_DISABLE_CACHE      - Parse on every render
//	MUSTACHE_TAGS               - Default delimiters, e.g. "<% %>"
//	MUSTACHE_LOG_LEVEL          - debug, info, warn, error or off
//	MUSTACHE_MAX_PARTIAL_DEPTH  - Limit on nested partials (0 = none)
//	MUSTACHE_STRICT_MODE        - Fail on missing partials
//
// # Error Handling
//
// The package defines several error types for specific failure cases:
//
//   - SyntaxError: malformed template, with line and column
//   - ConfigurationError: a lambda section rendered without its source text
//   - MissingPartialError: unresolved partial in strict mode
//   - RenderError: a lambda failed or partials nested too deeply
//
// Use errors.As, or IsSyntaxError and friends, to tell them apart.
package mustache
