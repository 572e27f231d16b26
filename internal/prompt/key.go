package prompt

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/aleister1102/sitecheck/internal/models"
)

// CacheKey derives the cache identity of a defect. Two defects sharing a key
// are interchangeable for remediation purposes: same type, same title, same
// details digest. The digest keeps keys short while details can be long.
func CacheKey(defect models.Defect) string {
	sum := sha256.Sum256([]byte(defect.Details))
	return fmt.Sprintf("%s::%s::%s", defect.Type, defect.Title, hex.EncodeToString(sum[:])[:12])
}
