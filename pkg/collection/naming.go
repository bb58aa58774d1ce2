package collection

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/matzehuels/stickerpack/pkg/errors"
)

// Naming selects how variant collections are named.
type Naming string

const (
	// ByGroupName names a collection after its template group ("logo1").
	ByGroupName Naming = "byGroupName"
	// BySlotIndex names a collection after the group's 1-based position among
	// active groups ("variant-2").
	BySlotIndex Naming = "bySlotIndex"
)

// DefaultNaming is used when no scheme is configured.
const DefaultNaming = ByGroupName

// ParseNaming validates a naming scheme. The empty string selects
// DefaultNaming.
func ParseNaming(s string) (Naming, error) {
	switch Naming(s) {
	case "":
		return DefaultNaming, nil
	case ByGroupName, BySlotIndex:
		return Naming(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidConfig, "invalid naming %q (must be %s or %s)", s, ByGroupName, BySlotIndex)
}

// VariantName returns the collection name for a template group.
func (n Naming) VariantName(slot int, group string) string {
	if n == BySlotIndex {
		return fmt.Sprintf("variant-%d", slot)
	}
	return Slug(group)
}

// Slug converts a group name into a portable directory name. Accents are
// removed, letters lowered, and runs of other characters collapsed to a
// single dash. A name with nothing usable left becomes "group".
func Slug(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '_':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "group"
	}
	return s
}
