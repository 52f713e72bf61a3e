package promo

import (
	"crypto/sha256"
	"encoding/hex"
)

// idLength is the number of hex characters kept from the content hash.
// Pages carry at most a few hundred promotions, so 64 bits is plenty.
const idLength = 16

// PromotionID derives a stable identifier from the promotion's title.
// The title is normalized first, so incidental markup or whitespace changes
// never change identity. Perk, dates and price are deliberately excluded
// from the hash: they move while the offer stays the same offer, and keeping
// them out lets a price or date update surface as a changed pair instead of
// a remove plus add.
func (n *Normalizer) PromotionID(title string) string {
	sum := sha256.Sum256([]byte(n.Normalize(title)))
	return hex.EncodeToString(sum[:])[:idLength]
}
