package classify

import "strings"

// DiseaseType is the leaf/fruit/unknown classification derived from a
// record's fields.
type DiseaseType string

const (
	TypeLeaf    DiseaseType = "leaf"
	TypeFruit   DiseaseType = "fruit"
	TypeUnknown DiseaseType = "unknown"
)

// ConfidenceThreshold is the percentage below which a record is routed to the
// unknown-confidence category regardless of its verification flag.
const ConfidenceThreshold = 50.0

// ParseType maps an externally supplied type string onto a DiseaseType.
// Unrecognized values come back as TypeUnknown with ok=false so callers can
// fall through to the next inference step.
func ParseType(s string) (DiseaseType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(TypeLeaf):
		return TypeLeaf, true
	case string(TypeFruit):
		return TypeFruit, true
	default:
		return TypeUnknown, false
	}
}

// NormalizeConfidence interprets a raw classifier score as a percentage.
// Scores at or below 1 are treated as fractions and scaled by 100; anything
// larger is assumed to already be a percentage. Callers must apply this
// exactly once, at ingestion.
func NormalizeConfidence(score float64) float64 {
	if score <= 1 {
		return score * 100
	}
	return score
}

// InferType resolves the disease type for a record using a priority chain:
// an explicit model-assigned type wins, then a backend-assigned disease type
// (unless it is itself unknown), then keyword matching on the lower-cased
// disease label, and finally TypeUnknown.
func InferType(diseaseLabel string, modelUsed, diseaseType *string) DiseaseType {
	if modelUsed != nil {
		if t, ok := ParseType(*modelUsed); ok {
			return t
		}
	}
	if diseaseType != nil {
		if t, ok := ParseType(*diseaseType); ok {
			return t
		}
	}
	return matchKeywords(diseaseLabel)
}

// Classify returns the inferred type and the normalized confidence
// percentage for a record. It is a pure function of its inputs.
func Classify(diseaseLabel string, score float64, modelUsed, diseaseType *string) (DiseaseType, float64) {
	return InferType(diseaseLabel, modelUsed, diseaseType), NormalizeConfidence(score)
}

// BelowThreshold reports whether a normalized confidence percentage falls
// under the unknown-confidence cutoff.
func BelowThreshold(confidence float64) bool {
	return confidence < ConfidenceThreshold
}

// DisplayName returns the folder display name for a disease label and type:
// the type is appended capitalized in parentheses unless it is unknown.
func DisplayName(diseaseLabel string, t DiseaseType) string {
	if t == TypeUnknown {
		return diseaseLabel
	}
	return diseaseLabel + " (" + capitalize(string(t)) + ")"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
