// Package transform rewrites fuse snippets from one guest language into the
// session's target language using a fixed table of translation templates.
//
// Translation is pattern-based, not general transpilation: each template
// recognizes the idioms the source snippet uses (file upload helpers, timer
// chains, tensor math, vector arithmetic) and emits an equivalent program in
// the target language. Pairs without a template leave the snippet untouched.
package transform

import "fmt"

// Translation is the result of rewriting a snippet into another language.
type Translation struct {
	// Language is the canonical target language of the rewritten code.
	Language string

	// Code is the rewritten snippet.
	Code string

	// Summary describes the rewrite for operator output, for example
	// "Rewriting PHP to Rust".
	Summary string
}

// Service rewrites snippets between languages. Implementations return
// ok == false when no translation exists for the pair, in which case the
// caller keeps the snippet as it is.
type Service interface {
	Translate(source, target, code string) (Translation, bool)
}

type pair struct {
	source string
	target string
}

type template func(code string) string

var aliases = map[string]string{
	"js": "javascript",
}

func canonical(language string) string {
	if c, ok := aliases[language]; ok {
		return c
	}
	return language
}

var displayNames = map[string]string{
	"php":        "PHP",
	"javascript": "JavaScript",
	"python":     "Python",
	"go":         "Go",
	"cpp":        "C++",
	"java":       "Java",
	"rust":       "Rust",
}

func displayName(language string) string {
	if name, ok := displayNames[language]; ok {
		return name
	}
	return language
}

// TemplateService translates through the built-in template table.
type TemplateService struct {
	templates map[pair]template
}

// NewTemplateService returns a service covering every built-in pair:
// php, javascript, python, go, and cpp sources rewritten toward rust,
// python, javascript, and java targets (minus the identity pairs).
func NewTemplateService() *TemplateService {
	return &TemplateService{templates: map[pair]template{
		{"php", "rust"}:        phpToRust,
		{"javascript", "rust"}: jsToRust,
		{"python", "rust"}:     pythonToRust,
		{"go", "rust"}:         goToRust,
		{"cpp", "rust"}:        cppToRust,

		{"php", "python"}:        phpToPython,
		{"javascript", "python"}: jsToPython,
		{"go", "python"}:         goToPython,
		{"cpp", "python"}:        cppToPython,

		{"php", "javascript"}:    phpToJS,
		{"python", "javascript"}: pythonToJS,
		{"go", "javascript"}:     goToJS,
		{"cpp", "javascript"}:    cppToJS,

		{"php", "java"}:        phpToJava,
		{"javascript", "java"}: jsToJava,
		{"python", "java"}:     pythonToJava,
		{"go", "java"}:         goToJava,
		{"cpp", "java"}:        cppToJava,
	}}
}

// Translate rewrites code from source to target. Aliases such as "js"
// resolve to their canonical names before lookup, and the returned
// Translation always names the canonical target language.
func (s *TemplateService) Translate(source, target, code string) (Translation, bool) {
	src := canonical(source)
	dst := canonical(target)

	tmpl, ok := s.templates[pair{src, dst}]
	if !ok {
		return Translation{}, false
	}
	return Translation{
		Language: dst,
		Code:     tmpl(code),
		Summary:  fmt.Sprintf("Rewriting %s to %s", displayName(src), displayName(dst)),
	}, true
}
