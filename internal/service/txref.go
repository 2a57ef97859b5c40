package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewTxRef returns a unique payment reference of the form
// <namespace>-<unix millis>-<12 hex chars>.
func NewTxRef(namespace string) string {
	return newTxRef(namespace, time.Now())
}

func newTxRef(namespace string, now time.Time) string {
	if namespace == "" {
		namespace = "isoko"
	}
	return fmt.Sprintf("%s-%d-%s", namespace, now.UnixMilli(), randomHex(6))
}

// NewOrderNumber returns a human readable order number with 48 random
// bits, e.g. ISK-20261019-7F3A2C9B1E04.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("ISK-%s-%s", now.UTC().Format("20060102"), strings.ToUpper(randomHex(6)))
}

// randomHex returns 2n hex characters.
func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		u := uuid.New()
		copy(b, u[:])
	}
	return hex.EncodeToString(b)
}
