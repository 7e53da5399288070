package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"awaitlint/internal/diag"
	"awaitlint/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее); диагностики
// разделяются пустой строкой.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	for i, d := range bag.Items() {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, RenderPretty(d, fs, opts)); err != nil {
			return err
		}
	}
	return nil
}

// RenderPretty renders one diagnostic as a header, a boxed source snippet
// and an optional help line. Diagnostics without labels (IO failures,
// timings) get only the header and help. The result always ends in '\n'.
func RenderPretty(d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) string {
	p := newPainter(opts)
	theme := opts.Theme
	if theme == nil {
		theme = &ThemeUnicode
	}

	var sb strings.Builder
	sevColor := p.severity(d.Severity)
	fmt.Fprintf(&sb, "  %s %s\n", sevColor.Sprint(theme.glyph(d.Severity)), sevColor.Sprint(d.Code.String()+":")+" "+d.Message)

	var file *source.File
	if fs != nil && len(d.Labels) > 0 {
		file = fs.Get(d.Primary.File)
	}
	if file != nil {
		renderSnippet(&sb, d, fs, file, theme, p, opts)
	}

	if d.Help != "" {
		fmt.Fprintf(&sb, "  %s %s\n", p.help.Sprint("help:"), d.Help)
	}
	return sb.String()
}

func renderSnippet(sb *strings.Builder, d diag.Diagnostic, fs *source.FileSet, file *source.File, theme *Theme, p painter, opts PrettyOpts) {
	start := file.LineCol(d.Primary.Start)

	ctx := uint32(max(opts.Context, 0))
	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	// метка в самом конце файла может стоять на строке после последней
	last := max(min(start.Line+ctx, file.LineCount()), start.Line)

	width := len(strconv.FormatUint(uint64(last), 10))
	pad := strings.Repeat(" ", width+2)

	fmt.Fprintf(sb, "%s%s%s:%d:%d%s\n", pad, theme.LocatorOpen, formatPath(fs, file, opts.PathMode), start.Line, start.Col, theme.LocatorClose)

	for ln := first; ln <= last; ln++ {
		text := file.GetLine(ln)
		if text == "" {
			fmt.Fprintf(sb, " %*d %s\n", width, ln, theme.Gutter)
		} else {
			fmt.Fprintf(sb, " %*d %s %s\n", width, ln, theme.Gutter, text)
		}
		for i, label := range d.Labels {
			if label.Span.File != file.ID || file.LineCol(label.Span.Start).Line != ln {
				continue
			}
			underline := p.secondary
			if i == 0 {
				underline = p.severity(d.Severity)
			}
			indent, cols := labelColumns(file, ln, label.Span, opts.DisplayWidth)
			fmt.Fprintf(sb, "%s%s %s%s", pad, theme.Annotation, indent, underline.Sprint(strings.Repeat(theme.Underline, cols)))
			if label.Msg != "" {
				sb.WriteString(" " + label.Msg)
			}
			sb.WriteByte('\n')
		}
	}
	fmt.Fprintf(sb, "%s%s\n", pad, theme.Close)
}

// labelColumns returns the padding before a label on line ln and the number
// of underline marks. Both count code points unless displayWidth is set,
// in which case they count terminal cells and tabs are copied into the
// padding so the marks line up with the tab stops of the source row.
// A label never underlines past the end of its first line, and an empty
// label still gets one mark.
func labelColumns(file *source.File, ln uint32, sp source.Span, displayWidth bool) (string, int) {
	line := file.GetLine(ln)
	lineStart := file.LineStart(ln)
	from := min(int(sp.Start-lineStart), len(line))
	to := min(max(int(sp.End)-int(lineStart), from), len(line))
	before, marked := line[:from], line[from:to]

	if !displayWidth {
		return strings.Repeat(" ", utf8.RuneCountInString(before)), max(utf8.RuneCountInString(marked), 1)
	}
	var indent strings.Builder
	for _, r := range before {
		if r == '\t' {
			indent.WriteByte('\t')
			continue
		}
		indent.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return indent.String(), max(runewidth.StringWidth(marked), 1)
}

// painter holds the colours of one render; every colour is a no-op when
// colour is off.
type painter struct {
	err, warn, info *color.Color
	secondary       *color.Color
	help            *color.Color
}

func newPainter(opts PrettyOpts) painter {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return painter{
		err:       mk(color.FgRed, color.Bold),
		warn:      mk(color.FgYellow, color.Bold),
		info:      mk(color.FgBlue, color.Bold),
		secondary: mk(color.FgCyan),
		help:      mk(color.FgCyan, color.Bold),
	}
}

func (p painter) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}
