package mustache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

const validationParserVersion = "v1"

// IssueSeverity indicates validation issue severity.
type IssueSeverity string

const (
	IssueSeverityError   IssueSeverity = "error"
	IssueSeverityWarning IssueSeverity = "warning"
)

// IssueCode identifies the kind of a validation issue.
type IssueCode string

const (
	IssueCodeSyntaxError    IssueCode = "SYNTAX_ERROR"
	IssueCodeUnknownPartial IssueCode = "UNKNOWN_PARTIAL"
	IssueCodeEmptyTag       IssueCode = "EMPTY_TAG"
)

// TokenKind identifies extracted reference categories.
type TokenKind string

const (
	TokenKindVariable  TokenKind = "variable"
	TokenKindUnescaped TokenKind = "unescaped"
	TokenKindSection   TokenKind = "section"
	TokenKindInverted  TokenKind = "inverted"
	TokenKindPartial   TokenKind = "partial"
)

// ValidateTemplateInput controls validation behavior.
type ValidateTemplateInput struct {
	Template string `json:"-"`
	// Tags defaults to DefaultTags when zero.
	Tags Tags `json:"-"`
	// Partials, when set, is used to check that every {{>name}} resolves.
	Partials Partials `json:"-"`
	// Strict reports unknown partials as errors rather than warnings.
	Strict    bool `json:"strict,omitempty"`
	MaxIssues int  `json:"maxIssues,omitempty"` // 0 = unlimited
}

// TemplateLocation identifies a position in a template.
type TemplateLocation struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// TemplateReference is one name a template refers to.
type TemplateReference struct {
	Name     string           `json:"name"`
	Kind     TokenKind        `json:"kind"`
	Location TemplateLocation `json:"location"`
}

// ValidationIssue is a problem found in a template.
type ValidationIssue struct {
	ID         string           `json:"id"`
	Severity   IssueSeverity    `json:"severity"`
	Code       IssueCode        `json:"code"`
	Message    string           `json:"message"`
	Location   TemplateLocation `json:"location"`
	Suggestion string           `json:"suggestion,omitempty"`
}

// ValidationSummary contains validation counters.
type ValidationSummary struct {
	CheckedTokens      int `json:"checkedTokens"`
	ErrorCount         int `json:"errorCount"`
	WarningCount       int `json:"warningCount"`
	ReturnedIssueCount int `json:"returnedIssueCount"`
}

// TemplateMetadata identifies the validated template and parser.
type TemplateMetadata struct {
	TemplateHash  string `json:"templateHash"`
	ParserVersion string `json:"parserVersion"`
}

// ValidateTemplateResult contains validation output.
type ValidateTemplateResult struct {
	Valid           bool              `json:"valid"`
	Summary         ValidationSummary `json:"summary"`
	Issues          []ValidationIssue `json:"issues"`
	IssuesTruncated bool              `json:"issuesTruncated"`
	Metadata        TemplateMetadata  `json:"metadata"`
}

// Err returns the error-severity issues as a MultiError, or nil if there are
// none.
func (r ValidateTemplateResult) Err() error {
	errs := NewMultiError()
	for _, issue := range r.Issues {
		if issue.Severity == IssueSeverityError {
			errs.Add(fmt.Errorf("%d:%d: %s", issue.Location.Line, issue.Location.Column, issue.Message))
		}
	}
	return errs.Err()
}

// ValidateTemplate checks a template without rendering it. A syntax error is
// reported as a single issue since tokenizing stops at the first one.
func ValidateTemplate(input ValidateTemplateInput) ValidateTemplateResult {
	tags := input.Tags
	if tags == (Tags{}) {
		tags = DefaultTags
	}

	var issues []ValidationIssue
	checked := 0

	tokens, err := Tokenize(input.Template, tags)
	if err != nil {
		issue := ValidationIssue{
			Severity: IssueSeverityError,
			Code:     IssueCodeSyntaxError,
			Message:  err.Error(),
		}
		var syntaxErr *SyntaxError
		if errors.As(err, &syntaxErr) {
			issue.Message = syntaxErr.Message
			issue.Location = TemplateLocation{
				Offset: syntaxErr.Position,
				Line:   syntaxErr.Line,
				Column: syntaxErr.Column,
			}
		}
		issues = append(issues, issue)
	} else {
		for _, tok := range tokens {
			kind, ok := referenceKind(tok.Type)
			if !ok {
				continue
			}
			checked++
			location := locate(input.Template, tok.Start)

			if tok.Value == "" {
				issues = append(issues, ValidationIssue{
					Severity: IssueSeverityWarning,
					Code:     IssueCodeEmptyTag,
					Message:  fmt.Sprintf("empty %s tag", kind),
					Location: location,
				})
				continue
			}

			if tok.Type == TokenPartial && input.Partials != nil {
				if _, found := input.Partials.Partial(tok.Value); !found {
					severity := IssueSeverityWarning
					if input.Strict {
						severity = IssueSeverityError
					}
					issues = append(issues, ValidationIssue{
						Severity:   severity,
						Code:       IssueCodeUnknownPartial,
						Message:    fmt.Sprintf("partial %q not found", tok.Value),
						Location:   location,
						Suggestion: suggestPartial(tok.Value, input.Partials),
					})
				}
			}
		}
	}

	errorCount := 0
	for i := range issues {
		issues[i].ID = fmt.Sprintf("iss_%03d", i+1)
		if issues[i].Severity == IssueSeverityError {
			errorCount++
		}
	}

	returned := issues
	truncated := false
	if input.MaxIssues > 0 && len(issues) > input.MaxIssues {
		returned = issues[:input.MaxIssues]
		truncated = true
	}

	return ValidateTemplateResult{
		Valid: errorCount == 0,
		Summary: ValidationSummary{
			CheckedTokens:      checked,
			ErrorCount:         errorCount,
			WarningCount:       len(issues) - errorCount,
			ReturnedIssueCount: len(returned),
		},
		Issues:          returned,
		IssuesTruncated: truncated,
		Metadata:        newTemplateMetadata(input.Template),
	}
}

// ExtractReferences lists every variable, section and partial name in a
// template, in source order.
func ExtractReferences(template string, tags Tags) ([]TemplateReference, error) {
	tokens, err := Tokenize(template, tags)
	if err != nil {
		return nil, err
	}

	var refs []TemplateReference
	for _, tok := range tokens {
		kind, ok := referenceKind(tok.Type)
		if !ok {
			continue
		}
		refs = append(refs, TemplateReference{
			Name:     tok.Value,
			Kind:     kind,
			Location: locate(template, tok.Start),
		})
	}
	return refs, nil
}

func referenceKind(t TokenType) (TokenKind, bool) {
	switch t {
	case TokenName:
		return TokenKindVariable, true
	case TokenUnescaped:
		return TokenKindUnescaped, true
	case TokenSection:
		return TokenKindSection, true
	case TokenInverted:
		return TokenKindInverted, true
	case TokenPartial:
		return TokenKindPartial, true
	}
	return "", false
}

func locate(template string, offset int) TemplateLocation {
	line, column := lineColumn(template, offset)
	return TemplateLocation{Offset: offset, Line: line, Column: column}
}

func newTemplateMetadata(template string) TemplateMetadata {
	sum := sha256.Sum256([]byte(template))
	return TemplateMetadata{
		TemplateHash:  "sha256:" + hex.EncodeToString(sum[:]),
		ParserVersion: validationParserVersion,
	}
}
