package domain

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

var orderNumberPattern = regexp.MustCompile(`^ORD-\d+-\d{3}$`)

// NewOrderNumber returns ORD-<unix millis>-<3 random digits>. Uniqueness is
// best effort; the orders table enforces it.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%03d", now.UnixMilli(), rand.IntN(1000))
}

func IsOrderNumber(s string) bool {
	return orderNumberPattern.MatchString(s)
}
