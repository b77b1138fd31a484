package extractor

import (
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"io"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// extractRawText parses the PDF byte stream directly, without the
// library. It decodes text-showing operators (Tj, TJ, ') inside BT..ET
// blocks and applies any ToUnicode glyph tables found in the document, so
// it can read CIDFont/Type0 statements the library renders as garbage.
// Returns nil when the document yields nothing.
func extractRawText(data []byte) []string {
	streams := contentStreams(data)
	if len(streams) == 0 {
		return nil
	}

	glyphs := glyphTablesIn(streams)

	var texts []string
	for _, stream := range streams {
		if text := streamText(inflate(stream), glyphs); text != "" {
			texts = append(texts, text)
		}
	}
	return assemblePages(texts)
}

// contentStreams returns the payload of every stream..endstream block.
func contentStreams(data []byte) [][]byte {
	var streams [][]byte
	begin := []byte("stream")
	end := []byte("endstream")

	for offset := 0; offset < len(data); {
		i := bytes.Index(data[offset:], begin)
		if i < 0 {
			break
		}
		start := offset + i + len(begin)
		// The keyword is followed by CRLF or LF before the payload.
		if start < len(data) && data[start] == '\r' {
			start++
		}
		if start < len(data) && data[start] == '\n' {
			start++
		}

		j := bytes.Index(data[start:], end)
		if j < 0 {
			break
		}
		if j > 0 {
			streams = append(streams, data[start:start+j])
		}
		offset = start + j + len(end)
	}
	return streams
}

// inflate undoes FlateDecode compression, returning the input unchanged
// when it is not a zlib stream.
func inflate(b []byte) []byte {
	r, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return b
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return b
	}
	return out
}

// Text-showing and positioning operators. PDF content streams are
// postfix, so the operand patterns precede the operator name.
var (
	hexShowOp     = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*Tj`)
	literalShowOp = regexp.MustCompile(`\(((?:[^)\\]|\\.)*)\)\s*Tj`)
	arrayShowOp   = regexp.MustCompile(`\[([^\]]*)\]\s*TJ`)
	nextLineShow  = regexp.MustCompile(`\(((?:[^)\\]|\\.)*)\)\s*'`)
	moveTextOp    = regexp.MustCompile(`(?:[-\d.]+)\s+(?:[-\d.]+)\s+T[dD]\b`)

	hexString     = regexp.MustCompile(`<([0-9A-Fa-f]+)>`)
	literalString = regexp.MustCompile(`\(((?:[^)\\]|\\.)*)\)`)
)

// streamText decodes the text operators of one content stream into lines.
func streamText(b []byte, glyphs glyphTable) string {
	content := string(b)
	if !strings.Contains(content, "Tj") && !strings.Contains(content, "TJ") &&
		!strings.Contains(content, "BT") {
		return ""
	}

	var lines []string
	for _, block := range textBlocks(content) {
		lines = append(lines, blockLines(block, glyphs)...)
	}

	// Streams that show text without BT/ET structure still carry
	// operators we can scan globally.
	if len(lines) == 0 {
		if text := looseText(content, glyphs); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// textBlocks returns every BT..ET section of a content stream.
func textBlocks(content string) []string {
	var blocks []string
	for {
		bt := strings.Index(content, "BT")
		if bt < 0 {
			break
		}
		et := strings.Index(content[bt:], "ET")
		if et < 0 {
			break
		}
		blocks = append(blocks, content[bt:bt+et+2])
		content = content[bt+et+2:]
	}
	return blocks
}

// blockLines walks one BT..ET block, accumulating shown text and breaking
// lines on the positioning operators Td, TD and T*.
func blockLines(block string, glyphs glyphTable) []string {
	var lines []string
	var line strings.Builder

	flush := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			lines = append(lines, s)
		}
		line.Reset()
	}

	for _, op := range strings.Split(block, "\n") {
		op = strings.TrimSpace(op)

		if op == "T*" || moveTextOp.MatchString(op) {
			flush()
		}
		for _, m := range hexShowOp.FindAllStringSubmatch(op, -1) {
			line.WriteString(decodeHex(m[1], glyphs))
		}
		for _, m := range literalShowOp.FindAllStringSubmatch(op, -1) {
			line.WriteString(decodeLiteral(m[1], glyphs))
		}
		for _, m := range arrayShowOp.FindAllStringSubmatch(op, -1) {
			line.WriteString(decodeArray(m[1], glyphs))
		}
		for _, m := range nextLineShow.FindAllStringSubmatch(op, -1) {
			flush()
			line.WriteString(decodeLiteral(m[1], glyphs))
		}
	}
	flush()
	return lines
}

// looseText scans a whole stream for show operators without tracking
// position, joining whatever it finds with spaces.
func looseText(content string, glyphs glyphTable) string {
	var parts []string
	collect := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}
	for _, m := range hexShowOp.FindAllStringSubmatch(content, -1) {
		collect(decodeHex(m[1], glyphs))
	}
	for _, m := range literalShowOp.FindAllStringSubmatch(content, -1) {
		collect(decodeLiteral(m[1], glyphs))
	}
	for _, m := range arrayShowOp.FindAllStringSubmatch(content, -1) {
		collect(decodeArray(m[1], glyphs))
	}
	return strings.Join(parts, " ")
}

// decodeHex decodes a <hex> string, preferring the document's glyph
// tables, then UTF-16BE, then plain ASCII.
func decodeHex(h string, glyphs glyphTable) string {
	raw, err := hex.DecodeString(h)
	if err != nil {
		return ""
	}

	if len(glyphs) > 0 {
		if s := glyphs.decode(raw); s != "" {
			return s
		}
	}

	if len(raw) >= 2 && len(raw)%2 == 0 {
		var b strings.Builder
		for i := 0; i+1 < len(raw); i += 2 {
			r := rune(raw[i])<<8 | rune(raw[i+1])
			if unicode.IsPrint(r) || r == ' ' {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return stripUnprintable(string(raw))
}

// decodeLiteral decodes a (literal) string, resolving escapes first.
func decodeLiteral(s string, glyphs glyphTable) string {
	unescaped := unescapeLiteral(s)
	if len(glyphs) > 0 {
		if out := glyphs.decode([]byte(unescaped)); out != "" && mostlyPrintable(out) {
			return out
		}
	}
	return stripUnprintable(unescaped)
}

// decodeArray decodes a TJ operand, an array interleaving strings with
// kerning numbers. The strings are concatenated in source order and the
// numbers dropped.
func decodeArray(array string, glyphs glyphTable) string {
	type piece struct {
		pos  int
		text string
	}
	var pieces []piece

	for _, idx := range hexString.FindAllStringSubmatchIndex(array, -1) {
		pieces = append(pieces, piece{idx[0], decodeHex(array[idx[2]:idx[3]], glyphs)})
	}
	for _, idx := range literalString.FindAllStringSubmatchIndex(array, -1) {
		pieces = append(pieces, piece{idx[0], decodeLiteral(array[idx[2]:idx[3]], glyphs)})
	}
	sort.SliceStable(pieces, func(a, b int) bool { return pieces[a].pos < pieces[b].pos })

	var b strings.Builder
	for _, p := range pieces {
		b.WriteString(p.text)
	}
	return b.String()
}

// unescapeLiteral resolves PDF string escapes: \n \r \t \b \f, escaped
// delimiters, and one to three octal digits.
func unescapeLiteral(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch c := s[i]; c {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '(', ')', '\\':
			b.WriteByte(c)
		default:
			if c < '0' || c > '7' {
				b.WriteByte(c)
				break
			}
			v := int(c - '0')
			for n := 0; n < 2 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; n++ {
				i++
				v = v*8 + int(s[i]-'0')
			}
			b.WriteByte(byte(v))
		}
	}
	return b.String()
}

func stripUnprintable(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		return -1
	}, s))
}

func mostlyPrintable(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 {
		return false
	}
	printable := 0
	for _, r := range runes {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	return float64(printable)/float64(len(runes)) > 0.5
}

// assemblePages merges stream fragments into page text. Content streams
// rarely map one-to-one onto pages, so fragments are joined and tiny
// scraps (isolated operators, labels) dropped unless they are all we
// have.
func assemblePages(texts []string) []string {
	var kept []string
	var all []string
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		all = append(all, t)
		if len(t) > 10 {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		kept = all
	}
	if len(kept) == 0 {
		return nil
	}
	return []string{strings.Join(kept, "\n")}
}
