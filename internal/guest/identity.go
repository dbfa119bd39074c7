// Package guest derives the pseudo-identities used for anonymous ratings,
// wishlist votes and messages.
package guest

import (
	"encoding/hex"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/blake2b"
)

// IPHashKey is the gin context key holding the caller's hashed IP.
const IPHashKey = "ipHash"

// Hasher turns client IPs into stable, non-reversible identifiers.
type Hasher struct {
	key [32]byte
}

// NewHasher keys the hash with salt so identifiers cannot be matched across deployments.
func NewHasher(salt string) *Hasher {
	return &Hasher{key: blake2b.Sum256([]byte(salt))}
}

// Hash returns the hex digest for ip.
func (h *Hasher) Hash(ip string) string {
	mac, err := blake2b.New256(h.key[:])
	if err != nil {
		// Only reachable with a key longer than 64 bytes.
		panic(err)
	}
	mac.Write([]byte(ip))
	return hex.EncodeToString(mac.Sum(nil))
}

// Middleware stores the hashed client IP under IPHashKey.
func Middleware(h *Hasher) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(IPHashKey, h.Hash(c.ClientIP()))
		c.Next()
	}
}

// IPHash returns the value set by Middleware.
func IPHash(c *gin.Context) string {
	return c.GetString(IPHashKey)
}
