package uuid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	googleuuid "github.com/google/uuid"
)

var (
	mu     sync.Mutex
	lastMs uint64
	seq    uint16
)

// New generates a new UUIDv7 based on the current timestamp.
// IDs generated by one process are strictly increasing: the 12-bit rand_a
// field carries a counter that restarts from a random value every
// millisecond (RFC 9562, method 1), so ordering by id breaks ties between
// rows created in the same millisecond in creation order.
//
// Format:
// - 48 bits: Unix timestamp in milliseconds
// - 4 bits: version (0111 = 7)
// - 12 bits: monotonic counter
// - 2 bits: variant (10)
// - 62 bits: random data
func New() string {
	var uuid [16]byte

	if _, err := rand.Read(uuid[6:]); err != nil {
		// Fallback to standard UUIDv4 if random generation fails
		return googleuuid.New().String()
	}

	ms, counter := next(uint16(uuid[6])<<8 | uint16(uuid[7]))

	binary.BigEndian.PutUint64(uuid[0:8], ms<<16)
	binary.BigEndian.PutUint16(uuid[6:8], counter&0x0fff)

	// Set version (4 bits) to 0111 (7)
	uuid[6] = (uuid[6] & 0x0f) | 0x70

	// Set variant (2 bits) to 10
	uuid[8] = (uuid[8] & 0x3f) | 0x80

	return formatUUID(uuid)
}

// next returns the timestamp and counter for the next ID. The counter is
// seeded in the lower half of its range so it rarely overflows; on overflow
// the timestamp is advanced by one millisecond.
func next(seed uint16) (uint64, uint16) {
	mu.Lock()
	defer mu.Unlock()

	now := uint64(time.Now().UnixMilli())
	if now > lastMs {
		lastMs = now
		seq = seed & 0x07ff
		return lastMs, seq
	}

	seq++
	if seq > 0x0fff {
		lastMs++
		seq = seed & 0x07ff
	}
	return lastMs, seq
}

// formatUUID formats a 16-byte array as a UUID string
func formatUUID(uuid [16]byte) string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binary.BigEndian.Uint32(uuid[0:4]),
		binary.BigEndian.Uint16(uuid[4:6]),
		binary.BigEndian.Uint16(uuid[6:8]),
		binary.BigEndian.Uint16(uuid[8:10]),
		uuid[10:16],
	)
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
