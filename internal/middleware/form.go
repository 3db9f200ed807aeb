package middleware

import (
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	formParameterLimit = 1000
	formDepthLimit     = 5
	formArrayLimit     = 20
)

// ErrTooManyParameters is returned when a form body has more than 1000 parameters.
var ErrTooManyParameters = errors.New("too many parameters")

// ParseNestedForm decodes a URL-encoded body, expanding bracket keys into nested values.
//
//	a[b][c]=1      -> {"a": {"b": {"c": "1"}}}
//	a[]=1&a[]=2    -> {"a": ["1", "2"]}
//	a[1]=y&a[0]=x  -> {"a": ["x", "y"]}
//	a=1&a=2        -> {"a": ["1", "2"]}
func ParseNestedForm(body string) (map[string]any, error) {
	root := map[string]any{}
	if body == "" {
		return root, nil
	}

	pairs := strings.Split(body, "&")
	count := 0
	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		count++
		if count > formParameterLimit {
			return nil, ErrTooManyParameters
		}

		rawKey, rawVal, _ := strings.Cut(pair, "=")
		key := unescape(rawKey)
		if key == "" {
			continue
		}

		segs := splitKey(key)
		root[segs[0]] = assign(root[segs[0]], segs[1:], unescape(rawVal))
	}

	for k, v := range root {
		root[k] = compact(v)
	}
	return root, nil
}

func unescape(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

// splitKey turns "a[b][]" into ["a", "b", ""]. Brackets past the depth limit stay
// as one literal segment, and a key without a parent is taken literally.
func splitKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 {
		return []string{key}
	}

	segs := []string{key[:open]}
	rest := key[open:]
	for depth := 0; depth < formDepthLimit && strings.HasPrefix(rest, "["); depth++ {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		segs = append(segs, rest[1:end])
		rest = rest[end+1:]
	}
	if rest != "" {
		segs = append(segs, rest)
	}
	return segs
}

func assign(node any, segs []string, val string) any {
	if len(segs) == 0 {
		switch n := node.(type) {
		case nil:
			return val
		case []any:
			return append(n, val)
		case map[string]any:
			n[val] = true
			return n
		default:
			return []any{n, val}
		}
	}

	seg, rest := segs[0], segs[1:]

	if seg == "" {
		switch n := node.(type) {
		case nil:
			return []any{assign(nil, rest, val)}
		case []any:
			return append(n, assign(nil, rest, val))
		case map[string]any:
			n[strconv.Itoa(len(n))] = assign(nil, rest, val)
			return n
		default:
			return []any{n, assign(nil, rest, val)}
		}
	}

	var m map[string]any
	switch n := node.(type) {
	case map[string]any:
		m = n
	case []any:
		m = make(map[string]any, len(n)+1)
		for i, v := range n {
			m[strconv.Itoa(i)] = v
		}
	case nil:
		m = map[string]any{}
	default:
		m = map[string]any{"0": n}
	}
	m[seg] = assign(m[seg], rest, val)
	return m
}

// compact turns maps keyed only by small indices into ordered slices.
func compact(node any) any {
	switch n := node.(type) {
	case []any:
		for i, v := range n {
			n[i] = compact(v)
		}
		return n
	case map[string]any:
		for k, v := range n {
			n[k] = compact(v)
		}
		indices, ok := arrayIndices(n)
		if !ok {
			return n
		}
		out := make([]any, 0, len(indices))
		for _, i := range indices {
			out = append(out, n[strconv.Itoa(i)])
		}
		return out
	default:
		return node
	}
}

func arrayIndices(m map[string]any) ([]int, bool) {
	if len(m) == 0 {
		return nil, false
	}
	indices := make([]int, 0, len(m))
	for k := range m {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i > formArrayLimit || strconv.Itoa(i) != k {
			return nil, false
		}
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices, true
}
