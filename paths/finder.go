// Package paths matches concrete request URLs against the templated paths a
// specification declares.
//
// Import path: github.com/erraggy/oasguard/paths
//
// A [Finder] is built once per document. It compiles every path template
// (such as "/pets/{petId}") into a regular expression, orders the templates
// by specificity so concrete segments win over parameterized ones, and
// strips server base paths from incoming URLs before matching. [Finder.Find]
// resolves a method and URL path to a [Route] carrying the matched path
// item, the operation, and the raw path variables.
package paths

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/erraggy/oasguard/internal/httputil"
	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/spec"
)

// Route is the result of resolving a request against the spec's paths.
type Route struct {
	// Template is the matched path template (e.g., "/pets/{petId}")
	Template string

	// Method is the HTTP method of the request (e.g., "GET")
	Method string

	// PathItem is the path item node the template maps to
	PathItem spec.Node

	// Operation is the operation node for the request method
	Operation spec.Node

	// Variables holds the raw path variable values extracted from the URL,
	// keyed by parameter name
	Variables map[string]string
}

// matcher converts one path template into a regex pattern and extracts
// variable values from request paths that match it.
type matcher struct {
	// template is the original OAS path template (e.g., "/pets/{petId}")
	template string

	// regex is the compiled pattern for matching
	regex *regexp.Regexp

	// paramNames are the variable names in order of appearance
	paramNames []string

	// specificity is used for sorting matchers (higher = more specific)
	specificity int

	// item is the path item node the template maps to
	item spec.Node
}

// newMatcher compiles an OAS path template into a matcher.
// Returns an error if the template is malformed (e.g., unclosed braces).
func newMatcher(template string, item spec.Node) (*matcher, error) {
	if template == "" {
		return nil, fmt.Errorf("path template cannot be empty")
	}

	var regexBuf strings.Builder
	regexBuf.WriteString("^")

	paramNames := []string{}
	specificity := 0

	i := 0
	for i < len(template) {
		if template[i] == '{' {
			// Find closing brace
			end := strings.Index(template[i:], "}")
			if end == -1 {
				return nil, fmt.Errorf("unclosed path parameter at position %d in template %q", i, template)
			}

			paramName := template[i+1 : i+end]
			if paramName == "" {
				return nil, fmt.Errorf("empty path parameter at position %d in template %q", i, template)
			}

			// Check for duplicate parameter names
			for _, existing := range paramNames {
				if existing == paramName {
					return nil, fmt.Errorf("duplicate path parameter %q in template %q", paramName, template)
				}
			}

			paramNames = append(paramNames, paramName)

			// Capture any non-slash characters; RFC 3986 separates path
			// segments with /
			regexBuf.WriteString("([^/]+)")

			i += end + 1
			// Parameters reduce specificity (exact matches are more specific)
			specificity--
		} else {
			// Escape regex special characters
			c := template[i]
			if strings.ContainsRune(`\.+*?()|[]{}^$`, rune(c)) {
				regexBuf.WriteByte('\\')
			}
			regexBuf.WriteByte(c)
			i++

			// Non-parameter characters increase specificity
			if c != '/' {
				specificity++
			}
		}
	}

	regexBuf.WriteString("$")

	regex, err := regexp.Compile(regexBuf.String())
	if err != nil {
		return nil, fmt.Errorf("failed to compile path pattern for template %q: %w", template, err)
	}

	return &matcher{
		template:    template,
		regex:       regex,
		paramNames:  paramNames,
		specificity: specificity,
		item:        item,
	}, nil
}

// match checks if the given path matches this template and extracts variables.
func (m *matcher) match(path string) (bool, map[string]string) {
	matches := m.regex.FindStringSubmatch(path)
	if matches == nil {
		return false, nil
	}

	// First match is the full string, subsequent matches are capture groups
	if len(matches) != len(m.paramNames)+1 {
		return false, nil
	}

	vars := make(map[string]string, len(m.paramNames))
	for i, name := range m.paramNames {
		vars[name] = matches[i+1]
	}

	return true, vars
}

// Finder resolves request methods and URL paths against a document's paths.
// It is built once per document and is safe for concurrent use.
type Finder struct {
	matchers []*matcher
	prefixes []string
}

// NewFinder builds a Finder from a loaded document.
// Returns an error if the document is nil or declares a malformed path
// template.
func NewFinder(doc *spec.Document) (*Finder, error) {
	if doc == nil {
		return nil, fmt.Errorf("paths: document cannot be nil")
	}

	pathsNode := doc.Root().Child("paths")
	matchers := make([]*matcher, 0, pathsNode.Len())
	for _, template := range pathsNode.Keys() {
		m, err := newMatcher(template, pathsNode.Child(template))
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}

	// Sort by specificity (highest first), then by template length (longest
	// first), then alphabetically for stability
	sort.Slice(matchers, func(i, j int) bool {
		if matchers[i].specificity != matchers[j].specificity {
			return matchers[i].specificity > matchers[j].specificity
		}
		if len(matchers[i].template) != len(matchers[j].template) {
			return len(matchers[i].template) > len(matchers[j].template)
		}
		return matchers[i].template < matchers[j].template
	})

	return &Finder{
		matchers: matchers,
		prefixes: serverPrefixes(doc),
	}, nil
}

// Find resolves a request method and URL path to a Route.
//
// The URL path is first tried with the longest matching server base path
// stripped, then as given. Templates are tried in specificity order so
// "/pets/mine" wins over "/pets/{petId}". When a template matches but the
// path item does not declare the method, the failure reports method-not-
// allowed rather than path-not-found.
func (f *Finder) Find(method, urlPath string) (*Route, error) {
	for _, candidate := range f.candidates(urlPath) {
		for _, m := range f.matchers {
			matched, vars := m.match(candidate)
			if !matched {
				continue
			}

			key := strings.ToLower(method)
			op := m.item.Child(key)
			if !httputil.IsMethod(key) || !op.Exists() {
				return nil, &oaserrors.PathError{
					Method:           method,
					Path:             urlPath,
					MethodNotAllowed: true,
				}
			}

			return &Route{
				Template:  m.template,
				Method:    method,
				PathItem:  m.item,
				Operation: op,
				Variables: vars,
			}, nil
		}
	}

	return nil, &oaserrors.PathError{Method: method, Path: urlPath}
}

// Templates returns all path templates in specificity order.
func (f *Finder) Templates() []string {
	templates := make([]string, len(f.matchers))
	for i, m := range f.matchers {
		templates[i] = m.template
	}
	return templates
}

// candidates returns the paths to try against the templates: the URL path
// with the longest matching server base path stripped (when one applies),
// followed by the path as given.
func (f *Finder) candidates(urlPath string) []string {
	out := make([]string, 0, 2)
	for _, prefix := range f.prefixes {
		if !strings.HasPrefix(urlPath, prefix) {
			continue
		}
		trimmed := strings.TrimPrefix(urlPath, prefix)
		if trimmed == "" {
			trimmed = "/"
		}
		// The prefix must end on a segment boundary: /v1 must not strip /v1x
		if !strings.HasPrefix(trimmed, "/") {
			continue
		}
		out = append(out, trimmed)
		break
	}
	return append(out, urlPath)
}

// serverPrefixes extracts the path component of every server URL, with
// server variables substituted by their declared defaults. Prefixes are
// ordered longest first so the most specific base path is stripped.
func serverPrefixes(doc *spec.Document) []string {
	servers := doc.Root().Child("servers")
	seen := make(map[string]bool)
	var prefixes []string

	for i := 0; i < servers.Len(); i++ {
		server := servers.At(i)
		raw := server.StrOr("url", "")
		if raw == "" {
			continue
		}

		// Substitute declared server variables with their defaults
		vars := server.Child("variables")
		for _, name := range vars.Keys() {
			raw = strings.ReplaceAll(raw, "{"+name+"}", vars.Child(name).StrOr("default", ""))
		}

		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		p := strings.TrimSuffix(u.Path, "/")
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		prefixes = append(prefixes, p)
	}

	sort.Slice(prefixes, func(i, j int) bool {
		return len(prefixes[i]) > len(prefixes[j])
	})
	return prefixes
}
