package style

import (
	"strings"

	"github.com/iancoleman/strcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Label truncation: labels longer than maxLabelRunes keep their first
// truncatedRunes runes followed by ellipsis.
const (
	maxLabelRunes  = 20
	truncatedRunes = 17
	ellipsis       = "..."
)

// TransformLabel turns a type identifier into a display label:
// "worksAt" -> "Works At", "http://schema.org/Place" -> "Place".
func TransformLabel(typeID string) string {
	local := localName(typeID)
	if local == "" {
		return ""
	}
	// A Caser carries state and is not safe for concurrent use
	return cases.Title(language.English).String(strcase.ToDelimited(local, ' '))
}

// localName returns the part of a URI after the last '#' or '/'
func localName(id string) string {
	id = strings.TrimRight(strings.TrimSpace(id), "/#")
	if i := strings.LastIndexAny(id, "/#"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// TruncateLabel shortens labels over 20 runes to 17 runes plus "..."
func TruncateLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= maxLabelRunes {
		return label
	}
	return string(runes[:truncatedRunes]) + ellipsis
}

// DefaultEdgeLabel is the static legend label of an edge type
func DefaultEdgeLabel(typeID string) string {
	return TruncateLabel(TransformLabel(typeID))
}
