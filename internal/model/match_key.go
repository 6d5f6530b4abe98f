package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const matchKeySeparator = "\x1f"

// foldKey joins the natural key fields into one Unicode case-folded value.
// Fields are NFC-normalized first so composed and decomposed accents compare equal.
func foldKey(fields ...string) string {
	folder := cases.Fold()
	folded := make([]string, len(fields))
	for i, field := range fields {
		folded[i] = folder.String(norm.NFC.String(field))
	}
	return strings.Join(folded, matchKeySeparator)
}
