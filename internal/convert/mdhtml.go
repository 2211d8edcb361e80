// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/pdiddy/pdf-bench/internal/container"
	"github.com/pdiddy/pdf-bench/internal/render"
)

const imagePandoc = "pandoc/core"

// DefaultPandocTimeout bounds one pandoc container run.
const DefaultPandocTimeout = 60 * time.Second

// Engine names reported by MarkdownToHTML.
const (
	EngineGoldmark = "goldmark"
	EnginePandoc   = "pandoc"
	EngineBasic    = "basic-fallback"
)

// Engine converts Markdown text to an HTML body fragment.
type Engine interface {
	Name() string
	Render(md string) (string, error)
}

// GoldmarkEngine renders GitHub-flavoured Markdown in process.
type GoldmarkEngine struct {
	md goldmark.Markdown
}

// NewGoldmarkEngine creates a goldmark engine with tables and strikethrough.
// Raw HTML in the input is passed through.
func NewGoldmarkEngine() *GoldmarkEngine {
	return &GoldmarkEngine{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

func (g *GoldmarkEngine) Name() string { return EngineGoldmark }

func (g *GoldmarkEngine) Render(md string) (string, error) {
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("goldmark: %w", err)
	}
	return buf.String(), nil
}

// PandocEngine pipes Markdown through the pandoc container image.
type PandocEngine struct {
	runtime container.Runtime

	// Timeout bounds each run; zero means DefaultPandocTimeout.
	Timeout time.Duration
}

// NewPandocEngine creates an engine backed by rt. It verifies that the
// pandoc image exists locally before returning.
func NewPandocEngine(rt container.Runtime) (*PandocEngine, error) {
	if err := rt.ImageExists(imagePandoc); err != nil {
		return nil, fmt.Errorf("pandoc image not available in %s: %w", rt.Name(), err)
	}
	return &PandocEngine{runtime: rt, Timeout: DefaultPandocTimeout}, nil
}

func (p *PandocEngine) Name() string { return EnginePandoc }

func (p *PandocEngine) Render(md string) (string, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPandocTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var out bytes.Buffer
	args := []string{"-f", "markdown", "-t", "html"}
	if err := p.runtime.Run(ctx, imagePandoc, args, strings.NewReader(md), &out); err != nil {
		return "", fmt.Errorf("converting with pandoc: %w", err)
	}
	return out.String(), nil
}

// BasicEngine is the last-resort converter. It understands ATX headings and
// flat bullet lists; every other non-blank line becomes a paragraph.
type BasicEngine struct{}

func (BasicEngine) Name() string { return EngineBasic }

func (BasicEngine) Render(md string) (string, error) {
	return BasicMarkdownToHTML(md), nil
}

var bulletPattern = regexp.MustCompile(`^[-*+]\s+`)

// BasicMarkdownToHTML converts Markdown line by line. Headings take the
// number of leading '#' (capped at 6) as their level, consecutive bullet
// lines share one <ul>, and all text is escaped.
func BasicMarkdownToHTML(md string) string {
	var out []string
	inList := false
	closeList := func() {
		if inList {
			out = append(out, "</ul>")
			inList = false
		}
	}

	for _, raw := range splitLines(md) {
		line := strings.TrimRightFunc(raw, unicode.IsSpace)
		switch {
		case line == "":
			closeList()
		case strings.HasPrefix(line, "#"):
			closeList()
			level := min(6, len(line)-len(strings.TrimLeft(line, "#")))
			text := render.EscapeHTML(strings.TrimSpace(line[level:]))
			out = append(out, fmt.Sprintf("<h%d>%s</h%d>", level, text, level))
		case bulletPattern.MatchString(line):
			if !inList {
				out = append(out, "<ul>")
				inList = true
			}
			text := render.EscapeHTML(bulletPattern.ReplaceAllString(line, ""))
			out = append(out, "<li>"+text+"</li>")
		default:
			closeList()
			out = append(out, "<p>"+render.EscapeHTML(line)+"</p>")
		}
	}
	closeList()
	return strings.Join(out, "\n")
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// Chain tries engines in order and falls back to BasicEngine.
type Chain struct {
	engines   []Engine
	logger    *slog.Logger
	sanitizer *bluemonday.Policy
}

// NewChain creates a chain over engines. A nil logger uses slog.Default().
func NewChain(logger *slog.Logger, engines ...Engine) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{engines: engines, logger: logger}
}

// Sanitize makes the chain pass every body through policy before returning
// it. Goldmark and pandoc both keep raw HTML from the Markdown source.
func (c *Chain) Sanitize(policy *bluemonday.Policy) *Chain {
	c.sanitizer = policy
	return c
}

// DefaultChain is goldmark, then pandoc when a container runtime with the
// pandoc image is present, then the basic converter. runtime names the
// container runtime to use; empty means docker, then podman.
func DefaultChain(logger *slog.Logger, runtime string) *Chain {
	c := NewChain(logger, NewGoldmarkEngine())
	rt, err := container.Detect(runtime)
	if err != nil {
		c.logger.Debug("mdhtml.pandoc.unavailable", "error", err)
		return c
	}
	p, err := NewPandocEngine(rt)
	if err != nil {
		c.logger.Debug("mdhtml.pandoc.unavailable", "runtime", rt.Name(), "error", err)
		return c
	}
	c.engines = append(c.engines, p)
	return c
}

// MarkdownToHTML returns the HTML body for md and the name of the engine
// that produced it. An engine that fails or returns nothing is skipped.
func (c *Chain) MarkdownToHTML(md string) (body, engine string) {
	body, engine = c.render(md)
	if c.sanitizer != nil {
		body = c.sanitizer.Sanitize(body)
	}
	return body, engine
}

func (c *Chain) render(md string) (string, string) {
	for _, e := range c.engines {
		out, err := e.Render(md)
		if err != nil {
			c.logger.Warn("mdhtml.engine.failed", "engine", e.Name(), "error", err)
			continue
		}
		if out == "" {
			c.logger.Debug("mdhtml.engine.empty", "engine", e.Name())
			continue
		}
		return out, e.Name()
	}
	return BasicMarkdownToHTML(md), EngineBasic
}

const mdShell = "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"UTF-8\">\n<title>%s</title>\n</head>\n<body>\n%s\n</body>\n</html>\n"

// HTMLDocument wraps a body fragment in a standalone document.
func HTMLDocument(title, body string) string {
	return fmt.Sprintf(mdShell, render.EscapeHTML(title), body)
}

// MarkdownFileConverter converts Markdown files to standalone HTML
// documents through a Chain. LastEngine records the engine used by the most
// recent call.
type MarkdownFileConverter struct {
	chain *Chain

	// Title overrides the document title. When empty the file stem is used.
	Title      string
	LastEngine string
}

// NewMarkdownFileConverter creates a converter over chain.
func NewMarkdownFileConverter(chain *Chain) *MarkdownFileConverter {
	return &MarkdownFileConverter{chain: chain}
}

// Convert implements Converter.
func (m *MarkdownFileConverter) Convert(srcPath string) (string, error) {
	data, err := readFileLossy(srcPath)
	if err != nil {
		return "", err
	}
	body, engine := m.chain.MarkdownToHTML(data)
	m.LastEngine = engine

	title := m.Title
	if title == "" {
		title = stem(srcPath)
	}
	return HTMLDocument(title, body), nil
}

// readFileLossy reads a text file, replacing invalid UTF-8 with U+FFFD.
func readFileLossy(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}
