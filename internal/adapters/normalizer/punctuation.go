package normalizer

// cjkPunctuation is the fixed set of full-width punctuation and space characters
// removed in addition to ASCII punctuation and whitespace. It is never modified.
var cjkPunctuation = map[rune]struct{}{
	'。': {}, '，': {}, '、': {}, '；': {}, '：': {},
	'‘': {}, '’': {}, '“': {}, '”': {},
	'（': {}, '）': {}, '【': {}, '】': {}, '《': {}, '》': {},
	'—': {}, '·': {}, '…': {}, '！': {},
	' ': {},
}

// IsASCIIPunct reports whether r is punctuation in the C locale.
func IsASCIIPunct(r rune) bool {
	return (r >= '!' && r <= '/') ||
		(r >= ':' && r <= '@') ||
		(r >= '[' && r <= '`') ||
		(r >= '{' && r <= '~')
}

// IsASCIISpace reports whether r is whitespace in the C locale.
func IsASCIISpace(r rune) bool {
	return r == ' ' || (r >= '\t' && r <= '\r')
}

// IsCJKPunctuationOrSpace reports whether r is in the CJK punctuation table.
func IsCJKPunctuationOrSpace(r rune) bool {
	_, ok := cjkPunctuation[r]
	return ok
}

// IsRemovable reports whether a normalizer drops r.
func IsRemovable(r rune) bool {
	return IsASCIIPunct(r) || IsASCIISpace(r) || IsCJKPunctuationOrSpace(r)
}
