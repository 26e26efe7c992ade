package extract

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFText extracts the full text of a PDF document, page by page in
// order. The output keeps one text line per rendered line so the
// label-anchored parser sees the same layout the portal report prints.
func PDFText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var pages []string
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil || len(data) == 0 {
			continue
		}
		if text := contentStreamText(data); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("no text content in %s", path)
	}
	return strings.Join(pages, "\n"), nil
}

// literalRe matches PDF string literals: (text).
var literalRe = regexp.MustCompile(`\(([^)]*)\)`)

// contentStreamText walks the text-show operators of one page's content
// stream. Tj/TJ append to the current line; Td, TD, T* and ' start a
// new one, which is what keeps the report's row layout intact.
func contentStreamText(data []byte) string {
	var lines []string
	var cur strings.Builder

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			lines = append(lines, collapseSpaces(s))
		}
		cur.Reset()
	}

	for _, raw := range strings.Split(string(data), "\n") {
		op := strings.TrimSpace(raw)
		switch {
		case op == "":
		case strings.HasSuffix(op, "Tj"), strings.HasSuffix(op, "TJ"):
			for _, m := range literalRe.FindAllStringSubmatch(op, -1) {
				cur.WriteString(decodeLiteral(m[1]))
			}
		case strings.HasSuffix(op, "'") && strings.Contains(op, "("):
			flush()
			for _, m := range literalRe.FindAllStringSubmatch(op, -1) {
				cur.WriteString(decodeLiteral(m[1]))
			}
		case op == "T*", strings.HasSuffix(op, "Td"), strings.HasSuffix(op, "TD"):
			flush()
		}
	}
	flush()
	return strings.Join(lines, "\n")
}

// decodeLiteral resolves the escape sequences a PDF string literal may
// carry, including octal byte escapes.
func decodeLiteral(raw string) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch c := raw[i]; c {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(c)
		default:
			if c < '0' || c > '7' {
				sb.WriteByte(c)
				continue
			}
			val := int(c - '0')
			for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return sb.String()
}

var spaceRunRe = regexp.MustCompile(`[ \t]+`)

func collapseSpaces(s string) string {
	return spaceRunRe.ReplaceAllString(s, " ")
}
