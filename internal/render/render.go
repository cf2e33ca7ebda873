package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// glamour standard style names
const (
	StyleDark       = "dark"
	StyleLight      = "light"
	StyleDracula    = "dracula"
	StyleTokyoNight = "tokyo-night"
	StylePink       = "pink"
	StyleNoTTY      = "notty"
	StyleASCII      = "ascii"
)

// styleAliases maps config theme names onto glamour's standard style names
var styleAliases = map[string]string{
	"tokyonight":  StyleTokyoNight,
	"tokyo_night": StyleTokyoNight,
	"plain":       StyleNoTTY,
}

// StyleNames lists the built-in markdown styles
func StyleNames() []string {
	return []string{
		StyleDark,
		StyleLight,
		StyleDracula,
		StyleTokyoNight,
		StylePink,
		StyleNoTTY,
		StyleASCII,
	}
}

func resolveStyle(style string) string {
	if alias, ok := styleAliases[strings.ToLower(style)]; ok {
		return alias
	}
	if style == "" {
		return StyleDark
	}
	return style
}

// Renderer renders markdown with a fixed set of options.
//
// glamour.TermRenderer is not safe for concurrent Render calls, so renderers
// are built per width and guarded by a mutex.
type Renderer struct {
	opts Options

	mu      sync.Mutex
	byWidth map[int]*glamour.TermRenderer
}

// New creates a renderer for opts
func New(opts Options) *Renderer {
	return &Renderer{
		opts:    opts,
		byWidth: make(map[int]*glamour.TermRenderer),
	}
}

// Options returns the renderer options
func (r *Renderer) Options() Options {
	return r.opts
}

// Markdown renders content wrapped at width. A width of zero or less uses
// the configured width.
func (r *Renderer) Markdown(content string, width int) (string, error) {
	if width <= 0 {
		width = r.opts.Width
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tr, ok := r.byWidth[width]
	if !ok {
		var err error
		tr, err = newTermRenderer(r.opts.WithWidth(width))
		if err != nil {
			return "", err
		}
		r.byWidth[width] = tr
	}

	return tr.Render(content)
}

// Markdown renders content once with opts
func Markdown(content string, opts Options) (string, error) {
	tr, err := newTermRenderer(opts)
	if err != nil {
		return "", err
	}
	return tr.Render(content)
}

func newTermRenderer(opts Options) (*glamour.TermRenderer, error) {
	rendererOpts := []glamour.TermRendererOption{
		glamour.WithStylePath(resolveStyle(opts.Style)),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}

	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}

	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}

	tr, err := glamour.NewTermRenderer(rendererOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return tr, nil
}
