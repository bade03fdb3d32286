package utils

import (
	"math/rand"
	"strconv"
	"time"
)

// GenID returns an entity ID of the form {prefix}_{unixMillis}_{randBase36}.
// Uniqueness relies on collision improbability; there is no registry check.
func GenID(prefix string) string {
	ms := time.Now().UTC().UnixMilli()
	r := strconv.FormatInt(rand.Int63n(36*36*36*36*36*36*36), 36)
	return prefix + "_" + strconv.FormatInt(ms, 10) + "_" + r
}
