package extractor

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
)

// glyphTable maps uppercase hex glyph codes to Unicode strings, built
// from the ToUnicode CMap streams embedded in a PDF. Fonts that use it
// (CIDFont/Type0) show text as glyph indices that mean nothing without
// this table.
type glyphTable map[string]string

var (
	bfCharBlock  = regexp.MustCompile(`(?s)beginbfchar\s*(.*?)\s*endbfchar`)
	bfRangeBlock = regexp.MustCompile(`(?s)beginbfrange\s*(.*?)\s*endbfrange`)
	hexToken     = regexp.MustCompile(`<([0-9A-Fa-f]+)>`)
)

// glyphTablesIn parses and merges every ToUnicode table found in the
// given content streams. Later tables win on conflicting codes.
func glyphTablesIn(streams [][]byte) glyphTable {
	merged := glyphTable{}
	for _, stream := range streams {
		content := string(inflate(stream))
		if !strings.Contains(content, "beginbfchar") && !strings.Contains(content, "beginbfrange") {
			continue
		}
		for code, uni := range parseGlyphTable(content) {
			merged[code] = uni
		}
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

// parseGlyphTable reads the bfchar and bfrange sections of one CMap.
func parseGlyphTable(content string) glyphTable {
	table := glyphTable{}

	// bfchar entries pair a glyph code with a Unicode value:
	// <0041> <0041>
	for _, block := range bfCharBlock.FindAllStringSubmatch(content, -1) {
		tokens := hexToken.FindAllStringSubmatch(block[1], -1)
		for i := 0; i+1 < len(tokens); i += 2 {
			if uni := utf16FromHex(tokens[i+1][1]); uni != "" {
				table[strings.ToUpper(tokens[i][1])] = uni
			}
		}
	}

	// bfrange entries map a code range either onto consecutive Unicode
	// values (<start> <end> <first>) or onto an explicit array
	// (<start> <end> [<u1> <u2> ...]).
	for _, block := range bfRangeBlock.FindAllStringSubmatch(content, -1) {
		for _, line := range strings.Split(block[1], "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if i := strings.Index(line, "["); i >= 0 {
				table.addRangeArray(line[:i], line[i:])
				continue
			}
			table.addRange(line)
		}
	}
	return table
}

func (t glyphTable) addRange(line string) {
	tokens := hexToken.FindAllStringSubmatch(line, -1)
	if len(tokens) < 3 {
		return
	}
	start, err1 := strconv.ParseUint(tokens[0][1], 16, 32)
	end, err2 := strconv.ParseUint(tokens[1][1], 16, 32)
	first, err3 := strconv.ParseUint(tokens[2][1], 16, 32)
	if err1 != nil || err2 != nil || err3 != nil || end < start {
		return
	}

	width := len(tokens[0][1])
	uniWidth := len(tokens[2][1])
	for code := start; code <= end; code++ {
		uni := utf16FromHex(paddedHex(first+(code-start), uniWidth))
		if uni != "" {
			t[paddedHex(code, width)] = uni
		}
	}
}

func (t glyphTable) addRangeArray(head, array string) {
	tokens := hexToken.FindAllStringSubmatch(head, -1)
	if len(tokens) < 2 {
		return
	}
	start, err := strconv.ParseUint(tokens[0][1], 16, 32)
	if err != nil {
		return
	}
	width := len(tokens[0][1])
	for i, uniTok := range hexToken.FindAllStringSubmatch(array, -1) {
		if uni := utf16FromHex(uniTok[1]); uni != "" {
			t[paddedHex(start+uint64(i), width)] = uni
		}
	}
}

// decode translates raw string bytes through the table. The code width
// is taken from the table's shortest key, which for statement fonts is
// uniformly one or two bytes. Unknown multi-byte codes fall back to a
// single-byte lookup before being skipped.
func (t glyphTable) decode(raw []byte) string {
	if len(t) == 0 {
		return ""
	}

	width := t.codeWidth()
	var b strings.Builder
	for i := 0; i+width <= len(raw); {
		chunk := raw[i : i+width]
		key := strings.ToUpper(hex.EncodeToString(chunk))
		if uni, ok := t[key]; ok {
			b.WriteString(uni)
			i += width
			continue
		}
		if width > 1 {
			if uni, ok := t[strings.ToUpper(hex.EncodeToString(chunk[:1]))]; ok {
				b.WriteString(uni)
				i++
				continue
			}
		}
		if width == 1 && chunk[0] >= 32 && chunk[0] < 127 {
			b.WriteByte(chunk[0])
		}
		i += width
	}
	return b.String()
}

// codeWidth returns the byte width of the table's glyph codes.
func (t glyphTable) codeWidth() int {
	width := 0
	for k := range t {
		if w := len(k) / 2; width == 0 || w < width {
			width = w
		}
	}
	if width < 1 {
		width = 1
	}
	return width
}

// utf16FromHex decodes a hex-encoded UTF-16BE value, including surrogate
// pairs, into a Go string.
func utf16FromHex(h string) string {
	if len(h)%2 != 0 {
		h = "0" + h
	}
	data, err := hex.DecodeString(h)
	if err != nil {
		return ""
	}

	if len(data) == 1 {
		return string(rune(data[0]))
	}
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, uint16(data[i])<<8|uint16(data[i+1]))
	}
	if len(units) == 0 {
		return ""
	}
	return string(utf16.Decode(units))
}

// paddedHex formats a code as uppercase hex, zero-padded to the key
// width used by the table.
func paddedHex(v uint64, width int) string {
	return fmt.Sprintf("%0*X", width, v)
}
