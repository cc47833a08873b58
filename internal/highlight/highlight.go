// Package highlight tokenizes whole files with chroma and splits the token
// stream back into per-line fragments.
package highlight

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"reviewdiff/internal/cache"
	"reviewdiff/internal/diffview"
)

// Fragment is a run of text on one line sharing a token class.
type Fragment struct {
	Text  string
	Class chroma.TokenType
}

// File highlights text as the file named filename. Lines are split and
// tab-expanded exactly like diffview.Align, so fragment text lines up with
// aligned line text. Unknown languages yield one plain fragment per line.
func File(text, filename string, tabWidth int) [][]Fragment {
	lines := diffview.SplitLines(text)
	for i := range lines {
		lines[i] = diffview.ExpandTabs(lines[i], tabWidth)
	}
	return Lines(lines, filename)
}

// Lines highlights pre-split lines as one document.
func Lines(lines []string, filename string) [][]Fragment {
	if len(lines) == 0 {
		return nil
	}
	lexer := lexers.Match(filename)
	if lexer == nil {
		return plain(lines)
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, strings.Join(lines, "\n")+"\n")
	if err != nil {
		return plain(lines)
	}

	out := make([][]Fragment, len(lines))
	row := 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		for i, part := range strings.Split(tok.Value, "\n") {
			if i > 0 {
				row++
			}
			if part == "" || row >= len(lines) {
				continue
			}
			out[row] = appendFragment(out[row], Fragment{Text: part, Class: tok.Type})
		}
	}

	// Lexers may rewrite whitespace; such lines fall back to plain text.
	for i, frags := range out {
		if Text(frags) != lines[i] {
			out[i] = plainLine(lines[i])
		}
	}
	return out
}

// Text joins the fragment texts of one line.
func Text(frags []Fragment) string {
	var b strings.Builder
	for _, f := range frags {
		b.WriteString(f.Text)
	}
	return b.String()
}

func appendFragment(frags []Fragment, f Fragment) []Fragment {
	if n := len(frags); n > 0 && frags[n-1].Class == f.Class {
		frags[n-1].Text += f.Text
		return frags
	}
	return append(frags, f)
}

func plain(lines []string) [][]Fragment {
	out := make([][]Fragment, len(lines))
	for i, l := range lines {
		out[i] = plainLine(l)
	}
	return out
}

func plainLine(l string) []Fragment {
	if l == "" {
		return nil
	}
	return []Fragment{{Text: l, Class: chroma.Text}}
}

// Highlighter memoizes File by content.
type Highlighter struct {
	m *cache.Manager[[][]Fragment]
}

func New() *Highlighter {
	return &Highlighter{m: cache.New[[][]Fragment]("highlight", cache.DefaultExpiration, cache.DefaultCleanupInterval)}
}

func (h *Highlighter) File(text, filename string, tabWidth int) [][]Fragment {
	key := cache.Key(filename, strconv.Itoa(tabWidth), text)
	return h.m.GetOrCompute(key, func() [][]Fragment {
		return File(text, filename, tabWidth)
	})
}
