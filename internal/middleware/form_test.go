package middleware_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/cartservice/internal/middleware"
)

func TestParseNestedForm(t *testing.T) {
	tests := []struct {
		name string
		body string
		want map[string]any
	}{
		{
			name: "flat with escapes",
			body: "name=John+Doe&city=S%C3%A3o+Paulo",
			want: map[string]any{"name": "John Doe", "city": "São Paulo"},
		},
		{
			name: "nested object",
			body: "a[b][c]=1",
			want: map[string]any{"a": map[string]any{"b": map[string]any{"c": "1"}}},
		},
		{
			name: "push array",
			body: "a[]=1&a[]=2",
			want: map[string]any{"a": []any{"1", "2"}},
		},
		{
			name: "indexed array is ordered",
			body: "a[1]=y&a[0]=x",
			want: map[string]any{"a": []any{"x", "y"}},
		},
		{
			name: "large index stays an object key",
			body: "a[21]=x",
			want: map[string]any{"a": map[string]any{"21": "x"}},
		},
		{
			name: "repeated key becomes array",
			body: "a=1&a=2",
			want: map[string]any{"a": []any{"1", "2"}},
		},
		{
			name: "array of objects",
			body: "items[0][sku]=x&items[0][qty]=2&items[1][sku]=y",
			want: map[string]any{"items": []any{
				map[string]any{"sku": "x", "qty": "2"},
				map[string]any{"sku": "y"},
			}},
		},
		{
			name: "depth limit keeps remainder literal",
			body: "a[b][c][d][e][f][g]=1",
			want: map[string]any{"a": map[string]any{"b": map[string]any{"c": map[string]any{
				"d": map[string]any{"e": map[string]any{"f": map[string]any{"[g]": "1"}}},
			}}}},
		},
		{
			name: "empty pairs and keys ignored",
			body: "&=x&k=v&",
			want: map[string]any{"k": "v"},
		},
		{
			name: "empty body",
			body: "",
			want: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := middleware.ParseNestedForm(tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNestedForm_ParameterLimit(t *testing.T) {
	body := strings.TrimSuffix(strings.Repeat("k=v&", 1000), "&")
	_, err := middleware.ParseNestedForm(body)
	require.NoError(t, err)

	_, err = middleware.ParseNestedForm(body + "&one=more")
	assert.ErrorIs(t, err, middleware.ErrTooManyParameters)
}
