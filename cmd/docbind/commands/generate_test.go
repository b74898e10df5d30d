package commands

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/docbind/docbind/config"
	"github.com/docbind/docbind/decl"
)

const widgetPageHTML = `<html><body>
<h1>QWidget Class</h1>
<p>Inherits: <a href="qobject.html">QObject</a></p>
<h2>Properties</h2>
<table>
<tr><td>bool</td><td>enabled</td></tr>
</table>
<h2>Public Functions</h2>
<table>
<tr><td><a href="qsize.html">QSize</a></td><td>sizeHint() const</td></tr>
<tr><td>void</td><td>resize(const <a href="qsize.html">QSize</a> &amp;size)</td></tr>
</table>
</body></html>`

const objectPageHTML = `<html><body>
<h1>QObject Class</h1>
<h2>Public Functions</h2>
<table>
<tr><td>QString</td><td>objectName() const</td></tr>
</table>
</body></html>`

const sizePageHTML = `<html><body>
<h1>QSize Class</h1>
<h2>Public Functions</h2>
<table>
<tr><td>int</td><td>width() const</td></tr>
<tr><td>int</td><td>height() const</td></tr>
</table>
</body></html>`

func testPipelineConfig(root string) *config.Config {
	return &config.Config{
		Source:   config.SourceConfig{Root: root},
		Registry: config.RegistryConfig{PrimaryNamespace: "Qt"},
		Resolver: config.ResolverConfig{
			MaxDepth:             10,
			MaxConcurrentFetches: 2,
			RatePerSecond:        -1,
			FetchTimeoutSeconds:  5,
		},
		Output: config.OutputConfig{Dir: "mem://localhost/gen/out", FileName: "widgets.d.ts"},
	}
}

func TestPipelineGeneratesFromStorage(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	docs := map[string]string{
		"mem://localhost/gen/docs/qwidget.html": widgetPageHTML,
		"mem://localhost/gen/docs/qobject.html": objectPageHTML,
		"mem://localhost/gen/docs/qsize.html":   sizePageHTML,
	}
	for URL, payload := range docs {
		require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader(payload)))
	}

	cfg := testPipelineConfig("mem://localhost/gen/docs/qwidget.html")
	require.NoError(t, cfg.Validate())

	p, err := newPipeline(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, p.run(ctx))

	data, err := fs.DownloadWithURL(ctx, "mem://localhost/gen/out/widgets.d.ts")
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "AUTO-GENERATED by docbind")
	assert.Contains(t, content, "export interface QWidget extends QObject {")
	assert.Contains(t, content, "export interface QObject {")
	assert.Contains(t, content, "export interface QSize {")
	assert.Contains(t, content, "enabled: boolean;")
	assert.Contains(t, content, "sizeHint(): QSize;")
	assert.Contains(t, content, "resize(size: QSize): void;")
	assert.Contains(t, content, "objectName(): string;")
	assert.Contains(t, content, "width(): number;")
}

func TestPipelineRootWithoutDeclaration(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	URL := "mem://localhost/gen/docs/blank.html"
	require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode,
		strings.NewReader("<html><body><h1>Release Notes</h1></body></html>")))

	cfg := testPipelineConfig(URL)
	p, err := newPipeline(ctx, cfg)
	require.NoError(t, err)

	err = p.run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no declaration found")
}

func TestOutputFileNameDerivation(t *testing.T) {
	p := &pipeline{cfg: &config.Config{}}

	assert.Equal(t, "q_widget.d.ts", p.outputFileName(&decl.Declaration{Name: "QWidget"}))
	assert.Equal(t, "types.d.ts", p.outputFileName(&decl.Declaration{}))

	p.cfg.Output.FileName = "custom.d.ts"
	assert.Equal(t, "custom.d.ts", p.outputFileName(&decl.Declaration{Name: "QWidget"}))
}
