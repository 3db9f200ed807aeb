package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
)

type bodyKey struct{}

// Body returns the request body parsed by JSONBody or URLEncodedBody.
func Body(ctx context.Context) (any, bool) {
	v, ok := ctx.Value(bodyKey{}).(parsedBody)
	if !ok {
		return nil, false
	}
	return v.value, true
}

type parsedBody struct {
	value any
}

// DecodeBody copies the parsed body into v. A request without a parsed body leaves v untouched.
func DecodeBody(r *http.Request, v any) error {
	body, ok := Body(r.Context())
	if !ok {
		return nil
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("re-encode body: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// JSONBody parses application/json (and +json) request bodies up to limit bytes.
// Malformed input is answered with 400 and never reaches next.
func JSONBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, done := Body(r.Context()); done || !hasMediaType(r, isJSONMediaType) {
				next.ServeHTTP(w, r)
				return
			}
			if !checkCharset(w, r) {
				return
			}

			raw, ok := readLimited(w, r, limit)
			if !ok {
				return
			}

			value, err := parseStrictJSON(raw)
			if err != nil {
				slog.Debug("rejecting malformed JSON body", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
				return
			}

			next.ServeHTTP(w, withBody(r, raw, value))
		})
	}
}

// URLEncodedBody parses application/x-www-form-urlencoded bodies into nested values.
func URLEncodedBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, done := Body(r.Context()); done || !hasMediaType(r, isFormMediaType) {
				next.ServeHTTP(w, r)
				return
			}
			if !checkCharset(w, r) {
				return
			}

			raw, ok := readLimited(w, r, limit)
			if !ok {
				return
			}

			value, err := ParseNestedForm(string(raw))
			if err != nil {
				if errors.Is(err, ErrTooManyParameters) {
					writeError(w, http.StatusRequestEntityTooLarge, "TOO_MANY_PARAMETERS", err.Error())
					return
				}
				writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid request body")
				return
			}

			next.ServeHTTP(w, withBody(r, raw, value))
		})
	}
}

func withBody(r *http.Request, raw []byte, value any) *http.Request {
	ctx := context.WithValue(r.Context(), bodyKey{}, parsedBody{value: value})
	r = r.WithContext(ctx)
	r.Body = io.NopCloser(bytes.NewReader(raw))
	return r
}

func readLimited(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
				fmt.Sprintf("request body exceeds %d bytes", limit))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read request body")
		return nil, false
	}
	return raw, true
}

// parseStrictJSON accepts only an object or array at the top level. Empty input is an empty object.
func parseStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return map[string]any{}, nil
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil, errors.New("top-level value must be an object or array")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after top-level value")
	}
	return value, nil
}

func hasMediaType(r *http.Request, match func(string) bool) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return match(mt)
}

func isJSONMediaType(mt string) bool {
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func isFormMediaType(mt string) bool {
	return mt == "application/x-www-form-urlencoded"
}

func checkCharset(w http.ResponseWriter, r *http.Request) bool {
	_, params, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	charset := strings.ToLower(params["charset"])
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return true
	}
	writeError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_CHARSET",
		fmt.Sprintf("unsupported charset %q", charset))
	return false
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: errorDetail{Code: code, Message: message}}); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}
