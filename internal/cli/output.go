package cli

import (
	"encoding/json"
	"io"
	"strings"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// currencySymbol pulls "Rp" out of a setting like "IDR (Rp)". Anything else is used as is.
func currencySymbol(currency string) string {
	lp, rp := strings.Index(currency, "("), strings.LastIndex(currency, ")")
	if lp >= 0 && rp > lp+1 {
		return strings.TrimSpace(currency[lp+1 : rp])
	}
	return strings.TrimSpace(currency)
}
