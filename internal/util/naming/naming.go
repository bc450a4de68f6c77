package naming

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// IDLength is the length of the random suffix appended to instance names.
const IDLength = 6

// Lowercase alphanumerics only: cloud providers commonly restrict instance
// names to DNS labels.
const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Instance returns a new instance name for the given config prefix.
func Instance(prefix string) string {
	return prefix + "-" + randomID(IDLength)
}

// HasPrefix reports whether name was generated from the given config prefix.
func HasPrefix(name, prefix string) bool {
	return strings.HasPrefix(name, prefix+"-")
}

func randomID(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken.
			panic(err)
		}
		sb.WriteByte(alphabet[idx.Int64()])
	}
	return sb.String()
}
