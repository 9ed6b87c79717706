package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/benjaminschreck/go-mustache/pkg/mustache"
	"github.com/benjaminschreck/go-mustache/pkg/mustache/helpers"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mustache <command> [arguments]")
	fmt.Fprintln(w, "\nCommands:")
	fmt.Fprintln(w, "  render [flags] <template>     Render a template with JSON data")
	fmt.Fprintln(w, "  check [flags] <template>...   Report problems in templates")
	fmt.Fprintln(w, "  refs [flags] <template>       List the names a template uses")
	fmt.Fprintln(w, "  version                       Show version information")
}

// run executes one command and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}

	command := args[0]

	switch command {
	case "version":
		fmt.Fprintf(stdout, "go-mustache version %s\n", version)
		return 0
	case "render":
		return runRender(args[1:], stdin, stdout, stderr)
	case "check":
		return runCheck(args[1:], stdout, stderr)
	case "refs":
		return runRefs(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		usage(stderr)
		return 2
	}
}

func runRender(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dataPath := fs.String("data", "", "JSON view file, or - for stdin")
	partialsDir := fs.String("partials", "", "directory holding partial templates")
	ext := fs.String("ext", ".mustache", "partial file extension")
	tags := fs.String("tags", "", `default delimiters, e.g. "<% %>"`)
	strict := fs.Bool("strict", false, "fail on missing partials")
	raw := fs.Bool("raw", false, "do not HTML-escape variables")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "render: exactly one template is required")
		return 2
	}

	config := mustache.GetGlobalConfig()
	config.StrictMode = config.StrictMode || *strict
	if *tags != "" {
		config.Tags = *tags
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(stderr, "render: %v\n", err)
		return 2
	}

	opts := []mustache.Option{
		mustache.WithConfig(config),
		mustache.WithHelpers(helpers.Defaults()),
	}
	if *raw {
		opts = append(opts, mustache.WithEscaper(mustache.NoEscape))
	}
	engine := mustache.NewWithOptions(opts...)

	template, err := readTemplate(fs.Arg(0), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "render: %v\n", err)
		return 1
	}

	var view any
	if *dataPath != "" {
		view, err = readData(*dataPath, stdin)
		if err != nil {
			fmt.Fprintf(stderr, "render: %v\n", err)
			return 1
		}
	}

	var partials mustache.Partials
	if *partialsDir != "" {
		partials = mustache.NewFSPartials(os.DirFS(*partialsDir), *ext)
	}

	if err := engine.RenderTo(stdout, template, view, partials); err != nil {
		fmt.Fprintf(stderr, "render: %v\n", err)
		return 1
	}
	return 0
}

func runCheck(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	partialsDir := fs.String("partials", "", "directory holding partial templates")
	ext := fs.String("ext", ".mustache", "partial file extension")
	tags := fs.String("tags", "", `default delimiters, e.g. "<% %>"`)
	strict := fs.Bool("strict", false, "report unknown partials as errors")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "check: at least one template is required")
		return 2
	}

	input := mustache.ValidateTemplateInput{Strict: *strict}
	if *tags != "" {
		parsed, err := mustache.ParseTags(*tags)
		if err != nil {
			fmt.Fprintf(stderr, "check: %v\n", err)
			return 2
		}
		input.Tags = parsed
	}
	if *partialsDir != "" {
		input.Partials = mustache.NewFSPartials(os.DirFS(*partialsDir), *ext)
	}

	errs := mustache.NewMultiError()
	for _, path := range fs.Args() {
		b, err := os.ReadFile(path)
		if err != nil {
			errs.Add(err)
			continue
		}
		input.Template = string(b)

		result := mustache.ValidateTemplate(input)
		for _, issue := range result.Issues {
			fmt.Fprintf(stdout, "%s:%d:%d: %s: %s", path, issue.Location.Line, issue.Location.Column, issue.Severity, issue.Message)
			if issue.Suggestion != "" {
				fmt.Fprintf(stdout, " (did you mean %q?)", issue.Suggestion)
			}
			fmt.Fprintln(stdout)
		}
		if err := result.Err(); err != nil {
			errs.Add(mustache.WithContext(err, "check", map[string]interface{}{"file": path}))
		}
	}

	if err := errs.Err(); err != nil {
		fmt.Fprintf(stderr, "check failed: %d template(s) with errors\n", errs.Len())
		return 1
	}
	return 0
}

func runRefs(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("refs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	tags := fs.String("tags", "", `default delimiters, e.g. "<% %>"`)
	asJSON := fs.Bool("json", false, "print references as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "refs: exactly one template is required")
		return 2
	}

	parsedTags := mustache.DefaultTags
	if *tags != "" {
		var err error
		if parsedTags, err = mustache.ParseTags(*tags); err != nil {
			fmt.Fprintf(stderr, "refs: %v\n", err)
			return 2
		}
	}

	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "refs: %v\n", err)
		return 1
	}

	refs, err := mustache.ExtractReferences(string(b), parsedTags)
	if err != nil {
		fmt.Fprintf(stderr, "refs: %v\n", err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(refs); err != nil {
			fmt.Fprintf(stderr, "refs: %v\n", err)
			return 1
		}
		return 0
	}
	for _, ref := range refs {
		fmt.Fprintf(stdout, "%d:%d\t%s\t%s\n", ref.Location.Line, ref.Location.Column, ref.Kind, ref.Name)
	}
	return 0
}

func readTemplate(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func readData(path string, stdin io.Reader) (any, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var view any
	if err := json.NewDecoder(r).Decode(&view); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return view, nil
}
