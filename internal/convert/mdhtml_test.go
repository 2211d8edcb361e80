// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// stubEngine returns a fixed result.
type stubEngine struct {
	name  string
	out   string
	err   error
	calls int
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Render(string) (string, error) {
	s.calls++
	return s.out, s.err
}

// stubRuntime is a container.Runtime that echoes a canned result.
type stubRuntime struct {
	imageErr error
	runErr   error
	out      string
	gotImage string
	gotArgs  []string
	gotStdin string
	deadline bool
}

func (s *stubRuntime) Name() string    { return "docker" }
func (s *stubRuntime) Available() bool { return true }

func (s *stubRuntime) ImageExists(string) error { return s.imageErr }

func (s *stubRuntime) Run(ctx context.Context, image string, args []string, stdin io.Reader, stdout io.Writer) error {
	_, s.deadline = ctx.Deadline()
	s.gotImage = image
	s.gotArgs = args
	data, _ := io.ReadAll(stdin)
	s.gotStdin = string(data)
	if s.runErr != nil {
		return s.runErr
	}
	_, err := io.WriteString(stdout, s.out)
	return err
}

func TestBasicMarkdownToHTML(t *testing.T) {
	tests := []struct {
		name string
		md   string
		want string
	}{
		{
			name: "headings paragraphs and list",
			md:   "# Title\n\nSome text\n- a\n- b\n\nend\n",
			want: "<h1>Title</h1>\n<p>Some text</p>\n<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n<p>end</p>",
		},
		{
			name: "level capped at six",
			md:   "####### deep",
			want: "<h6># deep</h6>",
		},
		{
			name: "heading without space",
			md:   "##Tight",
			want: "<h2>Tight</h2>",
		},
		{
			name: "escaped list text",
			md:   "* x & <y>\n+ 'z'",
			want: "<ul>\n<li>x &amp; &lt;y&gt;</li>\n<li>&#x27;z&#x27;</li>\n</ul>",
		},
		{
			name: "heading closes list",
			md:   "- a\n## Next",
			want: "<ul>\n<li>a</li>\n</ul>\n<h2>Next</h2>",
		},
		{
			name: "indented bullet is a paragraph",
			md:   "  - indented",
			want: "<p>  - indented</p>",
		},
		{
			name: "crlf line endings",
			md:   "one\r\ntwo  \r\n",
			want: "<p>one</p>\n<p>two</p>",
		},
		{
			name: "empty input",
			md:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BasicMarkdownToHTML(tt.md))
		})
	}
}

func TestGoldmarkEngine(t *testing.T) {
	out, err := NewGoldmarkEngine().Render("# Hi\n\n- a\n- b\n\n~~gone~~\n\n| x | y |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Hi</h1>")
	assert.Contains(t, out, "<li>a</li>")
	assert.Contains(t, out, "<del>gone</del>")
	assert.Contains(t, out, "<table>")
}

func TestPandocEngine(t *testing.T) {
	rt := &stubRuntime{out: "<h1 id=\"hi\">Hi</h1>\n"}
	p, err := NewPandocEngine(rt)
	require.NoError(t, err)

	out, err := p.Render("# Hi")
	require.NoError(t, err)
	assert.Equal(t, "<h1 id=\"hi\">Hi</h1>\n", out)
	assert.Equal(t, "pandoc/core", rt.gotImage)
	assert.Equal(t, []string{"-f", "markdown", "-t", "html"}, rt.gotArgs)
	assert.Equal(t, "# Hi", rt.gotStdin)
	assert.True(t, rt.deadline, "pandoc runs are bounded by a timeout")

	rt.runErr = errors.New("exit status 1")
	_, err = p.Render("# Hi")
	assert.ErrorContains(t, err, "pandoc")
}

func TestPandocEngine_MissingImage(t *testing.T) {
	_, err := NewPandocEngine(&stubRuntime{imageErr: errors.New("no such image")})
	assert.ErrorContains(t, err, "pandoc image not available in docker")
}

func TestChain_MarkdownToHTML(t *testing.T) {
	failing := &stubEngine{name: "broken", err: errors.New("boom")}
	empty := &stubEngine{name: "silent"}
	good := &stubEngine{name: "good", out: "<p>ok</p>"}
	never := &stubEngine{name: "never", out: "<p>unused</p>"}

	body, engine := NewChain(quietLogger, failing, empty, good, never).MarkdownToHTML("ok")
	assert.Equal(t, "<p>ok</p>", body)
	assert.Equal(t, "good", engine)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, empty.calls)
	assert.Equal(t, 0, never.calls)
}

func TestChain_FallsBackToBasic(t *testing.T) {
	chain := NewChain(quietLogger, &stubEngine{name: "broken", err: errors.New("boom")})
	body, engine := chain.MarkdownToHTML("# T")
	assert.Equal(t, "<h1>T</h1>", body)
	assert.Equal(t, EngineBasic, engine)

	body, engine = NewChain(nil).MarkdownToHTML("text")
	assert.Equal(t, "<p>text</p>", body)
	assert.Equal(t, EngineBasic, engine)
}

func TestChain_GoldmarkFirst(t *testing.T) {
	_, engine := NewChain(quietLogger, NewGoldmarkEngine(), BasicEngine{}).MarkdownToHTML("# T")
	assert.Equal(t, EngineGoldmark, engine)

	// Empty input yields empty goldmark output; the basic engine is next.
	_, engine = NewChain(quietLogger, NewGoldmarkEngine(), BasicEngine{}).MarkdownToHTML("")
	assert.Equal(t, EngineBasic, engine)
}

func TestChain_Sanitize(t *testing.T) {
	md := "# Title\n\n<script>alert(1)</script>\n\nText with <span onclick=\"x()\">inline</span> html.\n"

	body, _ := NewChain(quietLogger, NewGoldmarkEngine()).MarkdownToHTML(md)
	assert.Contains(t, body, "<script>")

	body, engine := NewChain(quietLogger, NewGoldmarkEngine()).Sanitize(bluemonday.UGCPolicy()).MarkdownToHTML(md)
	assert.Equal(t, EngineGoldmark, engine)
	assert.NotContains(t, body, "<script>")
	assert.NotContains(t, body, "onclick")
	assert.Contains(t, body, "<h1>Title</h1>")
	assert.Contains(t, body, "inline")
}

func TestHTMLDocument(t *testing.T) {
	want := "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"UTF-8\">\n<title>a &lt;b&gt;</title>\n</head>\n<body>\n<p>x</p>\n</body>\n</html>\n"
	assert.Equal(t, want, HTMLDocument("a <b>", "<p>x</p>"))
}

func TestMarkdownFileConverter(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "report.md")
	require.NoError(t, os.WriteFile(src, []byte("# Report\n\nbody \xff\n"), 0o644))

	conv := NewMarkdownFileConverter(NewChain(quietLogger, BasicEngine{}))
	out, err := conv.Convert(src)
	require.NoError(t, err)

	assert.Equal(t, EngineBasic, conv.LastEngine)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>\n"))
	assert.Contains(t, out, "<title>report</title>")
	assert.Contains(t, out, "<h1>Report</h1>\n<p>body �</p>")

	_, err = conv.Convert(filepath.Join(tmp, "missing.md"))
	assert.Error(t, err)
}
