// Package persona defines the attributable identities a user can speak as.
//
// A Persona is a named identity with optional alternate Variants. Both carry
// boundary pairs: literal (prefix, suffix) delimiters used to claim a line of
// message text. Personas are created and edited by an external configuration
// surface; the resolution pipeline only reads them.
package persona

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	apperrors "github.com/vioshim/proxyengine/internal/platform/errors"
)

// MaxDisplayNameLength caps persona display names after normalization.
const MaxDisplayNameLength = 80

var (
	// ErrEmptyDisplayName indicates a missing persona display name.
	ErrEmptyDisplayName = apperrors.New(apperrors.CodePersonaEmptyDisplayName, "persona display name is required")
	// ErrDisplayNameTooLong indicates a display name over the length cap.
	ErrDisplayNameTooLong = apperrors.New(apperrors.CodePersonaDisplayNameTooLong, fmt.Sprintf("persona display name exceeds %d characters", MaxDisplayNameLength))
	// ErrEmptyVariantName indicates a variant without a name.
	ErrEmptyVariantName = apperrors.New(apperrors.CodePersonaEmptyVariantName, "variant name is required")
)

// BoundaryPair is a literal (prefix, suffix) delimiter pair. A line belongs
// to the pair's owner when it starts with Prefix and ends with Suffix.
type BoundaryPair struct {
	Prefix string
	Suffix string
}

// Empty reports whether both delimiters are empty. Empty pairs match every
// line, so they are excluded from per-line matching and only considered by
// the whole-message fallback.
func (p BoundaryPair) Empty() bool {
	return p.Prefix == "" && p.Suffix == ""
}

// Matches reports whether the line is wrapped by the pair.
func (p BoundaryPair) Matches(line string) bool {
	if len(line) < len(p.Prefix)+len(p.Suffix) {
		return false
	}
	return strings.HasPrefix(line, p.Prefix) && strings.HasSuffix(line, p.Suffix)
}

// Strip removes the pair's delimiters from the line. The caller must have
// checked Matches first.
func (p BoundaryPair) Strip(line string) string {
	return strings.TrimSuffix(strings.TrimPrefix(line, p.Prefix), p.Suffix)
}

// Speaker is the uniform view of anything a run can be attributed to,
// either a Persona or one of its Variants.
type Speaker interface {
	// SpeakerName returns the display name used when relaying a run.
	SpeakerName() string
	// SpeakerImage returns the avatar reference, possibly empty.
	SpeakerImage() string
}

// Variant is a named sub-identity of a Persona. A nil or absent image falls
// back to the parent persona's image. A name suffixed with a literal '*'
// forces that name even when it collides with the parent's.
type Variant struct {
	Name  string
	Image string

	// Pairs are the variant's own boundary pairs. Within one persona they
	// outrank the persona-level pairs.
	Pairs []BoundaryPair

	parent *Persona
}

// SpeakerName returns the variant's display name. The trailing '*' marker is
// never displayed; a variant without a name inherits the parent's.
func (v *Variant) SpeakerName() string {
	name := strings.TrimSuffix(v.Name, "*")
	if name == "" && v.parent != nil {
		return v.parent.SpeakerName()
	}
	return name
}

// SpeakerImage returns the variant image, falling back to the parent's.
func (v *Variant) SpeakerImage() string {
	if v.Image == "" && v.parent != nil {
		return v.parent.SpeakerImage()
	}
	return v.Image
}

// Parent returns the owning persona.
func (v *Variant) Parent() *Persona {
	return v.parent
}

// Persona is the top-level attributable identity.
type Persona struct {
	ID      int64
	OwnerID int64
	ScopeID int64

	DisplayName  string
	DefaultImage string

	// Pairs are the persona-level boundary pairs. Duplicate pairs collapse;
	// insertion order is irrelevant.
	Pairs []BoundaryPair

	// Variants are kept ordered by name.
	Variants []*Variant

	CreatedAt time.Time
}

// SpeakerName returns the persona display name.
func (p *Persona) SpeakerName() string {
	return p.DisplayName
}

// SpeakerImage returns the persona's default image.
func (p *Persona) SpeakerImage() string {
	return p.DefaultImage
}

// CreatePersonaInput describes the metadata needed to create a persona.
type CreatePersonaInput struct {
	OwnerID      int64
	ScopeID      int64
	DisplayName  string
	DefaultImage string
	Pairs        []BoundaryPair
	Variants     []*Variant
}

// CreatePersona creates a persona with normalized fields and timestamps.
func CreatePersona(input CreatePersonaInput, now func() time.Time) (*Persona, error) {
	if now == nil {
		now = time.Now
	}

	normalized, err := NormalizeCreatePersonaInput(input)
	if err != nil {
		return nil, err
	}

	p := &Persona{
		OwnerID:      normalized.OwnerID,
		ScopeID:      normalized.ScopeID,
		DisplayName:  normalized.DisplayName,
		DefaultImage: normalized.DefaultImage,
		Pairs:        normalized.Pairs,
		CreatedAt:    now().UTC(),
	}
	for _, v := range normalized.Variants {
		p.AddVariant(v)
	}
	return p, nil
}

// NormalizeCreatePersonaInput trims and validates persona metadata. Display
// names are NFC-normalized before the length cap is applied.
func NormalizeCreatePersonaInput(input CreatePersonaInput) (CreatePersonaInput, error) {
	input.DisplayName = NormalizeName(input.DisplayName)
	if input.DisplayName == "" {
		return CreatePersonaInput{}, ErrEmptyDisplayName
	}
	if len([]rune(input.DisplayName)) > MaxDisplayNameLength {
		return CreatePersonaInput{}, ErrDisplayNameTooLong
	}
	input.DefaultImage = strings.TrimSpace(input.DefaultImage)
	input.Pairs = dedupePairs(input.Pairs)
	for _, v := range input.Variants {
		if strings.TrimSuffix(strings.TrimSpace(v.Name), "*") == "" {
			return CreatePersonaInput{}, ErrEmptyVariantName
		}
	}
	return input, nil
}

// NormalizeName trims surrounding whitespace and applies NFC normalization.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// AddVariant attaches a variant, keeping the variant list ordered by name.
func (p *Persona) AddVariant(v *Variant) {
	v.parent = p
	v.Pairs = dedupePairs(v.Pairs)
	p.Variants = append(p.Variants, v)
	sort.SliceStable(p.Variants, func(i, j int) bool {
		return p.Variants[i].Name < p.Variants[j].Name
	})
}

// AddPair records a persona-level boundary pair.
func (p *Persona) AddPair(prefix, suffix string) {
	p.Pairs = dedupePairs(append(p.Pairs, BoundaryPair{Prefix: prefix, Suffix: suffix}))
}

func dedupePairs(pairs []BoundaryPair) []BoundaryPair {
	seen := make(map[BoundaryPair]struct{}, len(pairs))
	out := pairs[:0]
	for _, pair := range pairs {
		if _, ok := seen[pair]; ok {
			continue
		}
		seen[pair] = struct{}{}
		out = append(out, pair)
	}
	return out
}
