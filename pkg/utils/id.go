package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

var (
	// Counter for the fallback path when crypto/rand fails
	idCounter uint64
)

// GenerateSearchID generates a search ID with a timestamp prefix
func GenerateSearchID() string {
	timestamp := time.Now().Format("20060102-150405")
	b := make([]byte, 4)
	_, err := rand.Read(b)
	if err != nil {
		count := atomic.AddUint64(&idCounter, 1)
		return fmt.Sprintf("search-%s-%x", timestamp, count)
	}
	return fmt.Sprintf("search-%s-%s", timestamp, hex.EncodeToString(b))
}
