package interop

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Namespace names the browser-side module class that exports a function.
type Namespace string

const (
	NamespaceGeolocation Namespace = "Geolocation"
	NamespaceJsLogger    Namespace = "JsLogger"
	NamespaceObserver    Namespace = "Observer"
)

// String returns the namespace as it appears in identifiers. Underscores
// separate nested namespaces.
func (n Namespace) String() string {
	return strings.ReplaceAll(string(n), "_", ".")
}

// MethodName builds the `<Namespace>.<lowerCamelMethod>` identifier used to
// invoke a browser-side function.
func MethodName(ns Namespace, method string) string {
	return ns.String() + "." + ToJSONName(method)
}

// ToJSONName lowercases the first rune of name.
func ToJSONName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToLower(r)) + name[size:]
}

// SplitMethodName is the inverse of MethodName.
func SplitMethodName(identifier string) (Namespace, string, bool) {
	i := strings.LastIndexByte(identifier, '.')
	if i <= 0 || i == len(identifier)-1 {
		return "", "", false
	}
	return Namespace(strings.ReplaceAll(identifier[:i], ".", "_")), identifier[i+1:], true
}
