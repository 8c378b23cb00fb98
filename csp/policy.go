// Package csp reconciles a document's Content-Security-Policy between
// its <meta http-equiv> declaration and the HTTP response header, and
// injects a per-render nonce into the policy text and the elements the
// policy governs.
package csp

import "strings"

// HeaderName is the response header carrying the policy.
const HeaderName = "Content-Security-Policy"

// ParsedPolicy maps a directive name to its space-joined source list.
type ParsedPolicy map[string]string

// Parse splits a raw policy into directives. The grammar is permissive:
// any string parses. Segments are separated by ';', the first
// whitespace-delimited token of a segment is the directive name and the
// rest is its value. A repeated directive name keeps the last
// occurrence.
func Parse(raw string) ParsedPolicy {
	policy := make(ParsedPolicy)
	for _, segment := range strings.Split(raw, ";") {
		fields := strings.Fields(segment)
		if len(fields) == 0 {
			continue
		}
		policy[fields[0]] = strings.Join(fields[1:], " ")
	}
	return policy
}

// NonceRequirement reports which directive families ask for a nonce.
type NonceRequirement struct {
	Script bool
	Style  bool
}

// Or combines two requirements.
func (r NonceRequirement) Or(other NonceRequirement) NonceRequirement {
	return NonceRequirement{
		Script: r.Script || other.Script,
		Style:  r.Style || other.Style,
	}
}

// RequiresNonce reports whether the script-src and style-src directives
// contain the literal substring "nonce". The match is deliberately
// loose: it catches both the unfilled placeholder keyword and an
// already-quoted 'nonce-...' source.
func (p ParsedPolicy) RequiresNonce() NonceRequirement {
	return NonceRequirement{
		Script: strings.Contains(p["script-src"], "nonce"),
		Style:  strings.Contains(p["style-src"], "nonce"),
	}
}

// Rewrite replaces every occurrence of the literal substring "nonce" in
// raw with "nonce-<value>". The substitution is not directive-aware;
// callers only invoke it on policy text already known to be in scope for
// nonce injection, and at most once per render.
func Rewrite(raw, nonce string) string {
	return strings.ReplaceAll(raw, "nonce", "nonce-"+nonce)
}
