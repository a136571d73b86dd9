package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	orderIDPrefix    = "R"
	orderClockWidth  = 8
	orderSuffixWidth = 8
	// OrderIDLength is the fixed length of every generated order id.
	OrderIDLength = len(orderIDPrefix) + orderClockWidth + orderSuffixWidth
)

// Crockford base32, no I L O U
const orderAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// ==================== ORDER ID ====================

// GenerateOrderID returns R + base36 millisecond clock + random suffix,
// e.g. R0MGXK3F2Q7K9ZDAB. The suffix draws on uuid's crypto/rand source.
func GenerateOrderID(now time.Time) string {
	clock := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	if len(clock) < orderClockWidth {
		clock = strings.Repeat("0", orderClockWidth-len(clock)) + clock
	}
	clock = clock[len(clock)-orderClockWidth:]

	random := uuid.New()
	suffix := make([]byte, orderSuffixWidth)
	for i := range suffix {
		suffix[i] = orderAlphabet[int(random[i])%len(orderAlphabet)]
	}

	return orderIDPrefix + clock + string(suffix)
}

// LooksLikeOrderID is a cheap shape check used before touching storage.
func LooksLikeOrderID(id string) bool {
	if len(id) != OrderIDLength || !strings.HasPrefix(id, orderIDPrefix) {
		return false
	}
	for _, c := range id[len(orderIDPrefix):] {
		if !('0' <= c && c <= '9') && !('A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}
