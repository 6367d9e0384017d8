package classify

import "strings"

// Keyword tables for label-based type inference. Order matters: more specific
// disease names come before generic terms, and the leaf table is consulted
// before the fruit table. "healthy" sits in the leaf list so an otherwise
// untyped healthy record lands in leaf, matching the behavior of the original
// mobile clients.
var leafKeywords = []string{
	"anthracnose",
	"powdery mildew",
	"sooty mould",
	"sooty mold",
	"die back",
	"dieback",
	"bacterial canker",
	"gall midge",
	"cutting weevil",
	"leaf spot",
	"blight",
	"canker",
	"wilt",
	"mildew",
	"leaf",
	"healthy",
}

var fruitKeywords = []string{
	"black mould rot",
	"black mold rot",
	"stem end rot",
	"alternaria",
	"fruit rot",
	"rot",
	"mold",
	"mould",
	"decay",
	"fruit",
}

// matchKeywords scans the leaf table, then the fruit table, for the first
// substring hit against the lower-cased label.
func matchKeywords(diseaseLabel string) DiseaseType {
	label := strings.ToLower(diseaseLabel)
	for _, kw := range leafKeywords {
		if strings.Contains(label, kw) {
			return TypeLeaf
		}
	}
	for _, kw := range fruitKeywords {
		if strings.Contains(label, kw) {
			return TypeFruit
		}
	}
	return TypeUnknown
}
