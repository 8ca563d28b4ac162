package utils

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"sync/atomic"
	"time"
)

// Document ids are 24 hex characters: 4 bytes of unix seconds, 5 random
// process bytes, 3 counter bytes. The time prefix makes lexicographic order
// chronological, which chat history pagination relies on.

var (
	idProcess [5]byte
	idCounter uint32
)

func init() {
	_, _ = rand.Read(idProcess[:])
	var seed [4]byte
	_, _ = rand.Read(seed[:])
	idCounter = binary.BigEndian.Uint32(seed[:])
}

// NewID returns a new opaque 24-hex-character document id.
func NewID() string {
	var b [12]byte
	binary.BigEndian.PutUint32(b[0:4], uint32(time.Now().Unix()))
	copy(b[4:9], idProcess[:])
	c := atomic.AddUint32(&idCounter, 1)
	b[9] = byte(c >> 16)
	b[10] = byte(c >> 8)
	b[11] = byte(c)
	return hex.EncodeToString(b[:])
}

// ValidID reports whether s is a well-formed 24-hex document id.
func ValidID(s string) bool {
	if len(s) != 24 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
