// Package annotate parses functional annotations attached to variant records
// by snpEff (the EFF INFO field).
package annotate

import (
	"strings"

	"github.com/sequana/fbfilter/internal/vcf"
)

// Impact levels for variant effects.
const (
	ImpactHigh     = "HIGH"
	ImpactModerate = "MODERATE"
	ImpactLow      = "LOW"
	ImpactModifier = "MODIFIER"
)

// EFFKey is the INFO key holding snpEff annotations.
const EFFKey = "EFF"

// Annotation holds the effect fields taken from the first EFF entry.
type Annotation struct {
	EffectType   string // e.g. "NON_SYNONYMOUS_CODING"
	EffectImpact string // HIGH, MODERATE, LOW, MODIFIER
	MutationType string // functional class, e.g. "MISSENSE"
	CodonChange  string // e.g. "gAt/gGt"
	ProtEffect   string // protein change with the "p." marker dropped
	CDSPosition  string // coding change with the "c." marker dropped
	ProtSize     string // amino acid length
	GeneName     string
}

// FromVariant parses the EFF field of v. It returns false when the field is
// absent or does not have the expected layout.
func FromVariant(v *vcf.Variant) (*Annotation, bool) {
	raw, ok := v.InfoValue(EFFKey)
	if !ok {
		return nil, false
	}
	return ParseEFF(raw)
}

// ParseEFF parses the first entry of an EFF value:
//
//	Effect(Impact|Class|Codon_Change|AA_Change|AA_Length|Gene|...)
//
// The closing parenthesis of the entry is not part of the last element.
func ParseEFF(raw string) (*Annotation, bool) {
	entry, _, _ := strings.Cut(raw, ",")
	fields := strings.Split(strings.TrimSuffix(entry, ")"), "|")
	if len(fields) < 6 {
		return nil, false
	}

	effectType, impact, ok := strings.Cut(fields[0], "(")
	if !ok {
		return nil, false
	}

	protEffect, cdsEffect, ok := splitChange(fields[3])
	if !ok {
		protEffect, cdsEffect = "", fields[3]
	}

	return &Annotation{
		EffectType:   effectType,
		EffectImpact: strings.TrimSuffix(impact, ")"),
		MutationType: fields[1],
		CodonChange:  fields[2],
		ProtEffect:   dropMarker(protEffect),
		CDSPosition:  dropMarker(cdsEffect),
		ProtSize:     fields[4],
		GeneName:     fields[5],
	}, true
}

// splitChange splits "p.X/c.Y" into its two halves; any other number of
// slashes is not a protein/coding pair.
func splitChange(s string) (string, string, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// dropMarker removes the two-character HGVS marker ("p.", "c.").
func dropMarker(s string) string {
	if len(s) < 2 {
		return ""
	}
	return s[2:]
}

// ImpactRank returns numeric rank for impact comparison (higher = more severe).
func ImpactRank(impact string) int {
	switch impact {
	case ImpactHigh:
		return 3
	case ImpactModerate:
		return 2
	case ImpactLow:
		return 1
	default:
		return 0
	}
}
