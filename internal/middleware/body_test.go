package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/cartservice/internal/middleware"
)

type captured struct {
	called bool
	body   any
	parsed bool
}

func bodyPipeline(limit int64, c *captured) http.Handler {
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.body, c.parsed = middleware.Body(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return middleware.JSONBody(limit)(middleware.URLEncodedBody(limit)(final))
}

func send(h http.Handler, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/cart/u1/items", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp.Error.Code
}

func TestJSONBody_ParsesObject(t *testing.T) {
	var c captured
	w := send(bodyPipeline(1024, &c), "application/json; charset=utf-8", `{"product_id":"sku-1","quantity":2}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, c.parsed)
	assert.Equal(t, map[string]any{"product_id": "sku-1", "quantity": json.Number("2")}, c.body)
}

func TestJSONBody_VendorType(t *testing.T) {
	var c captured
	send(bodyPipeline(1024, &c), "application/vnd.api+json", `[1,2]`)

	require.True(t, c.parsed)
	assert.Equal(t, []any{json.Number("1"), json.Number("2")}, c.body)
}

func TestJSONBody_EmptyBodyIsEmptyObject(t *testing.T) {
	var c captured
	send(bodyPipeline(1024, &c), "application/json", "")

	require.True(t, c.parsed)
	assert.Equal(t, map[string]any{}, c.body)
}

func TestJSONBody_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		limit       int64
		status      int
		code        string
	}{
		{"malformed", "application/json", `{"quantity":`, 1024, http.StatusBadRequest, "INVALID_JSON"},
		{"primitive top level", "application/json", `"hello"`, 1024, http.StatusBadRequest, "INVALID_JSON"},
		{"trailing garbage", "application/json", `{} {}`, 1024, http.StatusBadRequest, "INVALID_JSON"},
		{"too large", "application/json", `{"name":"` + strings.Repeat("x", 64) + `"}`, 16, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{"unsupported charset", "application/json; charset=latin1", `{}`, 1024, http.StatusUnsupportedMediaType, "UNSUPPORTED_CHARSET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c captured
			w := send(bodyPipeline(tt.limit, &c), tt.contentType, tt.body)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
			assert.False(t, c.called, "rejected bodies must not reach the next handler")
		})
	}
}

func TestURLEncodedBody_ParsesNested(t *testing.T) {
	var c captured
	w := send(bodyPipeline(1024, &c), "application/x-www-form-urlencoded", "product_id=sku-1&meta[color]=red&tags[]=a&tags[]=b")

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, c.parsed)
	assert.Equal(t, map[string]any{
		"product_id": "sku-1",
		"meta":       map[string]any{"color": "red"},
		"tags":       []any{"a", "b"},
	}, c.body)
}

func TestBody_OtherContentTypesPassThrough(t *testing.T) {
	var c captured
	w := send(bodyPipeline(1024, &c), "text/plain", "{not json")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, c.called)
	assert.False(t, c.parsed)
}

func TestDecodeBody(t *testing.T) {
	type request struct {
		ProductID string `json:"product_id"`
		Color     string `json:"color"`
	}

	for name, tc := range map[string]struct{ contentType, body string }{
		"json": {"application/json", `{"product_id":"sku-1","color":"red"}`},
		"form": {"application/x-www-form-urlencoded", "product_id=sku-1&color=red"},
	} {
		t.Run(name, func(t *testing.T) {
			var got request
			h := middleware.JSONBody(1024)(middleware.URLEncodedBody(1024)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, middleware.DecodeBody(r, &got))
			})))
			send(h, tc.contentType, tc.body)

			assert.Equal(t, request{ProductID: "sku-1", Color: "red"}, got)
		})
	}
}

func TestDecodeBody_NoParsedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	var v struct{ A string }
	assert.NoError(t, middleware.DecodeBody(req, &v))
	assert.Empty(t, v.A)
}
