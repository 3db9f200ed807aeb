package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Int decodes from a JSON integer or a decimal string, so URL-encoded
// bodies ("quantity=2") and JSON bodies ({"quantity":2}) bind the same way.
type Int int64

// UnmarshalJSON implements json.Unmarshaler.
func (i *Int) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("expected an integer, got %s", data)
	}
	*i = Int(n)
	return nil
}

// AddItemRequest represents the request body for POST /cart/{userID}/items.
type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice *Int   `json:"unit_price"`
	Quantity  *Int   `json:"quantity,omitempty"` // defaults to 1
}

// UpdateQuantityRequest represents the request body for PATCH /cart/{userID}/items/{productID}.
type UpdateQuantityRequest struct {
	Quantity *Int `json:"quantity"`
}
