package utils

import (
	"fmt"
	"strconv"
	"time"
)

// OrderNumber is the human facing number printed on a receipt: "ORD-" and the
// last six digits of the millisecond clock.
func OrderNumber(t time.Time) string {
	return fmt.Sprintf("ORD-%06d", t.UnixMilli()%1_000_000)
}

// FallbackID identifies a confirmed order when the backend returned no id.
func FallbackID(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
