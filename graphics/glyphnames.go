package graphics

// glyphNameToRune maps the Adobe glyph names used by the single-byte
// Latin text encodings (font/pdfenc's Standard/WinAnsi/MacRoman tables)
// to the Unicode codepoint the embedded font's cmap is keyed on. This is
// not the full Adobe Glyph List — only the printable ASCII names content
// streams overwhelmingly use — documented as a scope decision in
// DESIGN.md rather than porting the several-thousand-entry AGL.
var glyphNameToRune = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"quoteright": '\'', "parenleft": '(', "parenright": ')', "asterisk": '*',
	"plus": '+', "comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=', "greater": '>',
	"question": '?', "at": '@', "bracketleft": '[', "backslash": '\\',
	"bracketright": ']', "asciicircum": '^', "underscore": '_',
	"grave": '`', "quoteleft": '`', "braceleft": '{', "bar": '|',
	"braceright": '}', "asciitilde": '~',
}

func init() {
	for c := 'A'; c <= 'Z'; c++ {
		glyphNameToRune[string(c)] = c
	}
	for c := 'a'; c <= 'z'; c++ {
		glyphNameToRune[string(c)] = c
	}
}

// runeForGlyphName resolves a glyph name to the rune the font's cmap
// should be queried with; ok is false for names with no known mapping
// (e.g. ".notdef", accented letters, or ligatures outside the ASCII
// table above).
func runeForGlyphName(name string) (rune, bool) {
	r, ok := glyphNameToRune[name]
	return r, ok
}
