package openapi

import (
	"regexp"
	"slices"
	"strings"
)

var (
	// bracePlaceholder matches {name} and {name:pattern}.
	bracePlaceholder = regexp.MustCompile(`\{([^}]+)\}`)

	// colonPlaceholder matches :name.
	colonPlaceholder = regexp.MustCompile(`:([A-Za-z_]+)`)
)

// methodOrder is the precedence used when writing the operations of a path.
var methodOrder = []string{"GET", "POST", "PUT", "DELETE", "HEAD", "PATCH", "OPTIONS"}

// bodyMethods are the methods that may carry a request body.
var bodyMethods = []string{"POST", "PUT", "PATCH"}

// NormalizePath converts a route template into an OpenAPI path template.
// Both "/items/:id" and "/items/{id:[0-9]+}" become "/items/{id}".
func NormalizePath(tpl string) string {
	out := bracePlaceholder.ReplaceAllStringFunc(tpl, func(match string) string {
		name, _, _ := strings.Cut(match[1:len(match)-1], ":")
		return "{" + name + "}"
	})
	return colonPlaceholder.ReplaceAllString(out, "{$1}")
}

// methodRank returns the position of method in the precedence list, or
// len(methodOrder) for methods outside it.
func methodRank(method string) int {
	if i := slices.Index(methodOrder, method); i >= 0 {
		return i
	}
	return len(methodOrder)
}

// sortMethods orders methods by precedence. Unknown methods follow the
// known ones and keep their relative order.
func sortMethods(methods []string) {
	slices.SortStableFunc(methods, func(a, b string) int {
		return methodRank(a) - methodRank(b)
	})
}

func allowsBody(method string) bool {
	return slices.Contains(bodyMethods, method)
}
