package service

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewTxRef(t *testing.T) {
	now := time.UnixMilli(1760870400123)

	ref := newTxRef("shop", now)
	assert.Regexp(t, regexp.MustCompile(`^shop-1760870400123-[0-9a-f]{12}$`), ref)

	assert.True(t, strings.HasPrefix(newTxRef("", now), "isoko-"))

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		ref := NewTxRef("isoko")
		assert.False(t, seen[ref], "duplicate tx_ref %s", ref)
		seen[ref] = true
	}
}

func TestNewOrderNumber(t *testing.T) {
	now := time.Date(2026, 10, 19, 23, 30, 0, 0, time.FixedZone("CAT", 2*60*60))
	number := NewOrderNumber(now)
	assert.Regexp(t, regexp.MustCompile(`^ISK-20261019-[0-9A-F]{12}$`), number)
}

func TestSessionIDs(t *testing.T) {
	id := NewSessionID()
	assert.True(t, ValidSessionID(id))
	assert.NotEqual(t, id, NewSessionID())

	tests := []struct {
		id    string
		valid bool
	}{
		{"abc-DEF_123", true},
		{"dGVzdA==", true},
		{"v1.session", true},
		{"", false},
		{strings.Repeat("a", maxSessionIDLength), true},
		{strings.Repeat("a", maxSessionIDLength+1), false},
		{"with space", false},
		{"<script>", false},
		{"ünïcode", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidSessionID(tt.id), "%q", tt.id)
	}
}
