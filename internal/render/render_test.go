package render

import (
	"strings"
	"sync"
	"testing"

	"github.com/diogo/streamchat/internal/config"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Width != 80 {
		t.Errorf("expected Width=80, got %d", opts.Width)
	}
	if opts.Style != "dark" {
		t.Errorf("expected Style='dark', got %s", opts.Style)
	}
	if !opts.EnableEmoji {
		t.Error("expected EnableEmoji=true")
	}
	if !opts.TableWrap {
		t.Error("expected TableWrap=true")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")

	md := config.MarkdownConfig{Style: "light", EnableEmoji: false, TableWrap: false}
	opts := OptionsFromConfig(md)

	if opts.Style != "light" {
		t.Errorf("expected Style='light', got %s", opts.Style)
	}
	if opts.EnableEmoji {
		t.Error("expected EnableEmoji=false")
	}
	if opts.Width != 80 {
		t.Errorf("expected default Width=80, got %d", opts.Width)
	}
}

func TestOptionsFromConfig_EnvOverride(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "dracula")

	opts := OptionsFromConfig(config.MarkdownConfig{Style: "light"})
	if opts.Style != "dracula" {
		t.Errorf("expected GLAMOUR_STYLE to win, got %s", opts.Style)
	}
}

func TestResolveStyle(t *testing.T) {
	tests := map[string]string{
		"":           "dark",
		"tokyonight": "tokyo-night",
		"TokyoNight": "tokyo-night",
		"plain":      "notty",
		"light":      "light",
		"/x/y.json":  "/x/y.json",
	}

	for in, want := range tests {
		if got := resolveStyle(in); got != want {
			t.Errorf("resolveStyle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown("# Title\n\nSome **bold** text", DefaultOptions().WithStyle(StyleNoTTY))
	if err != nil {
		t.Fatalf("Markdown() returned error: %v", err)
	}
	if !strings.Contains(out, "Title") {
		t.Errorf("expected output to contain the heading, got %q", out)
	}
	if !strings.Contains(out, "bold") {
		t.Errorf("expected output to contain the body, got %q", out)
	}
}

func TestMarkdown_InvalidStylePath(t *testing.T) {
	_, err := Markdown("text", DefaultOptions().WithStyle("/does/not/exist.json"))
	if err == nil {
		t.Error("expected an error for a missing style file")
	}
}

func TestRenderer_ReusesPerWidth(t *testing.T) {
	r := New(DefaultOptions().WithStyle(StyleASCII))

	if _, err := r.Markdown("hello", 40); err != nil {
		t.Fatalf("Markdown() returned error: %v", err)
	}
	if _, err := r.Markdown("again", 40); err != nil {
		t.Fatalf("Markdown() returned error: %v", err)
	}
	if _, err := r.Markdown("default width", 0); err != nil {
		t.Fatalf("Markdown() returned error: %v", err)
	}

	if len(r.byWidth) != 2 {
		t.Errorf("expected 2 cached renderers, got %d", len(r.byWidth))
	}
	if _, ok := r.byWidth[80]; !ok {
		t.Error("width 0 should use the configured width")
	}
}

func TestRenderer_Concurrent(t *testing.T) {
	r := New(DefaultOptions().WithStyle(StyleASCII))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := r.Markdown("- item", 40+i%2); err != nil {
				t.Errorf("Markdown() returned error: %v", err)
			}
		}(i)
	}
	wg.Wait()
}

func TestPalettes(t *testing.T) {
	for _, name := range PaletteNames() {
		p, ok := PaletteByName(name)
		if !ok {
			t.Fatalf("palette %s not found", name)
		}
		if p.Description == "" {
			t.Errorf("palette %s has empty description", name)
		}
		if p.User == "" || p.Assistant == "" || p.Error == "" || p.Status == "" {
			t.Errorf("palette %s is missing chat colors", name)
		}
	}
}

func TestPaletteOrDefault(t *testing.T) {
	if got := PaletteOrDefault("NORD").Name; got != "nord" {
		t.Errorf("expected case-insensitive lookup, got %s", got)
	}
	if got := PaletteOrDefault("missing").Name; got != DefaultPalette().Name {
		t.Errorf("expected default palette, got %s", got)
	}
}
