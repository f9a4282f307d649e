package utils

import (
	"time"

	"bitbucket.org/mmdatafocus/budgets_backend/store"
	"github.com/shopspring/decimal"
)

// DocDecimal reads a numeric field out of a raw document, tolerating
// the numeric types each store driver hands back.
func DocDecimal(data map[string]any, key string) decimal.Decimal {
	return store.ToDecimal(data[key])
}

func DocString(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func DocBool(data map[string]any, key string) bool {
	b, _ := data[key].(bool)
	return b
}

// DocTime reads a timestamp field. Firestore returns time.Time; older
// documents written by the browser client carry RFC 3339 strings.
func DocTime(data map[string]any, key string) time.Time {
	switch v := data[key].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}
