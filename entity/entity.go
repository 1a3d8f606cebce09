// Package entity implements the in-place HTML entity decoder described
// in spec.md §4.A: it is used by the attribute tokenizer (when decoding
// quoted attribute values) and by the #printenv handler's escaping path
// in reverse (encode), and is grounded on the teacher's table-driven
// enum style (config.ParameterType in the teacher repo).
package entity

import "strings"

// named holds the Latin-1 HTML named entities the decoder recognizes,
// each no longer than 6 bytes, mapping name (without & or ;) to its
// decoded byte sequence.
var named = map[string]string{
	"lt":     "<",
	"gt":     ">",
	"amp":    "&",
	"quot":   `"`,
	"apos":   "'",
	"nbsp":   " ",
	"iexcl":  "¡",
	"cent":   "¢",
	"pound":  "£",
	"curren": "¤",
	"yen":    "¥",
	"brvbar": "¦",
	"sect":   "§",
	"uml":    "¨",
	"copy":   "©",
	"ordf":   "ª",
	"laquo":  "«",
	"not":    "¬",
	"shy":    "­",
	"reg":    "®",
	"macr":   "¯",
	"deg":    "°",
	"plusmn": "±",
	"sup2":   "²",
	"sup3":   "³",
	"acute":  "´",
	"micro":  "µ",
	"para":   "¶",
	"middot": "·",
	"cedil":  "¸",
	"sup1":   "¹",
	"ordm":   "º",
	"raquo":  "»",
	"frac14": "¼",
	"frac12": "½",
	"frac34": "¾",
	"iquest": "¿",
	"Agrave": "À",
	"Aacute": "Á",
	"Acirc":  "Â",
	"Atilde": "Ã",
	"Auml":   "Ä",
	"Aring":  "Å",
	"AElig":  "Æ",
	"Ccedil": "Ç",
	"Egrave": "È",
	"Eacute": "É",
	"Ecirc":  "Ê",
	"Euml":   "Ë",
	"Igrave": "Ì",
	"Iacute": "Í",
	"Icirc":  "Î",
	"Iuml":   "Ï",
	"ETH":    "Ð",
	"Ntilde": "Ñ",
	"Ograve": "Ò",
	"Oacute": "Ó",
	"Ocirc":  "Ô",
	"Otilde": "Õ",
	"Ouml":   "Ö",
	"times":  "×",
	"Oslash": "Ø",
	"Ugrave": "Ù",
	"Uacute": "Ú",
	"Ucirc":  "Û",
	"Uuml":   "Ü",
	"Yacute": "Ý",
	"THORN":  "Þ",
	"szlig":  "ß",
	"agrave": "à",
	"aacute": "á",
	"acirc":  "â",
	"atilde": "ã",
	"auml":   "ä",
	"aring":  "å",
	"aelig":  "æ",
	"ccedil": "ç",
	"egrave": "è",
	"eacute": "é",
	"ecirc":  "ê",
	"euml":   "ë",
	"igrave": "ì",
	"iacute": "í",
	"icirc":  "î",
	"iuml":   "ï",
	"eth":    "ð",
	"ntilde": "ñ",
	"ograve": "ò",
	"oacute": "ó",
	"ocirc":  "ô",
	"otilde": "õ",
	"ouml":   "ö",
	"divide": "÷",
	"oslash": "ø",
	"ugrave": "ù",
	"uacute": "ú",
	"ucirc":  "û",
	"uuml":   "ü",
	"yacute": "ý",
	"thorn":  "þ",
	"yuml":   "ÿ",
}

// Decode returns s with HTML entities decoded in place, per spec.md
// §4.A: named entities from the table above, numeric entities (decimal
// only), with unused control codes dropped entirely and unterminated or
// unrecognized entities left untouched.
func Decode(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	var out strings.Builder
	out.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '&' {
			out.WriteByte(s[i])
			i++
			continue
		}
		if rest := s[i+1:]; len(rest) > 0 && rest[0] == '#' {
			if dec, n, ok := decodeNumeric(rest[1:]); ok {
				out.WriteString(dec)
				i += 2 + n
				continue
			}
			out.WriteByte('&')
			i++
			continue
		}
		if dec, n, ok := decodeNamed(s[i+1:]); ok {
			out.WriteString(dec)
			i += 1 + n
			continue
		}
		out.WriteByte('&')
		i++
	}
	return out.String()
}

// decodeNamed matches the longest recognized entity name (up to 6
// bytes) at the start of s, requiring a terminating ';'. It returns the
// decoded bytes and the number of source bytes consumed after the '&'
// (i.e. including the ';').
func decodeNamed(s string) (decoded string, consumed int, ok bool) {
	limit := 6
	if len(s) < limit {
		limit = len(s)
	}
	for n := limit; n >= 1; n-- {
		if n >= len(s) {
			continue
		}
		if s[n] != ';' {
			continue
		}
		if v, found := named[s[:n]]; found {
			return v, n + 1, true
		}
	}
	return "", 0, false
}

// decodeNumeric parses a decimal numeric reference "N;" (the caller has
// already consumed "&#"). Unused control codes are dropped (decoded to
// the empty string) rather than passed through, matching the historical
// &#00; behavior called out in spec.md §4.A and §8 scenario 8.
func decodeNumeric(s string) (decoded string, consumed int, ok bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(s) || s[i] != ';' {
		return "", 0, false
	}
	n := 0
	for _, c := range s[:i] {
		n = n*10 + int(c-'0')
		if n > 0x10ffff {
			n = 0x10ffff
		}
	}
	consumed = i + 1
	if n <= 8 || (n >= 11 && n <= 31) || (n >= 127 && n <= 160) || n >= 256 {
		return "", consumed, true
	}
	return string(rune(n)), consumed, true
}

// Encode escapes '&', '<', '>' and '"' the way #echo encoding="entity"
// does (spec.md §4.H); it is the inverse direction of Decode and is used
// by the echo and printenv handlers.
func Encode(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			out.WriteString("&amp;")
		case '<':
			out.WriteString("&lt;")
		case '>':
			out.WriteString("&gt;")
		case '"':
			out.WriteString("&quot;")
		default:
			out.WriteByte(s[i])
		}
	}
	return out.String()
}
