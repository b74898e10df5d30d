package page

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbind/docbind/decl"
)

func mustParse(t *testing.T, uri, source string) *Page {
	t.Helper()
	p, err := ParsePage(uri, strings.NewReader(source))
	require.NoError(t, err)
	return p
}

func TestExtractDeclaration(t *testing.T) {
	p := mustParse(t, "qwidget.html", widgetPageHTML)
	d := ExtractDeclaration(p)
	require.NotNil(t, d)

	assert.Equal(t, "QWidget", d.Name)
	assert.Equal(t, "QWidget", d.FullName)
	assert.Empty(t, d.Namespace)
	assert.Equal(t, decl.KindClass, d.Kind)
	assert.Equal(t, "qwidget.html", d.SourceURI)

	require.Len(t, d.Inherits, 2)
	assert.Equal(t, decl.TypedRef{Type: "QObject", Href: "qobject.html"}, d.Inherits[0])
	assert.Equal(t, decl.TypedRef{Type: "QPaintDevice", Href: "qpaintdevice.html"}, d.Inherits[1])

	require.Len(t, d.Properties, 2)
	assert.Equal(t, decl.Property{Name: "enabled", Type: "bool"}, d.Properties[0])
	assert.Equal(t, decl.Property{Name: "windowTitle", Type: "QString", ReadOnly: true}, d.Properties[1])

	require.Len(t, d.Methods, 5)

	setText := d.Methods[0]
	assert.Equal(t, "setText", setText.Name)
	assert.Equal(t, "void", setText.ReturnType)
	require.Len(t, setText.Params, 1)
	assert.Equal(t, decl.Param{Name: "text", Type: "const QString &"}, setText.Params[0])

	sizeHint := d.Methods[1]
	assert.Equal(t, "sizeHint", sizeHint.Name)
	assert.Equal(t, "QSize", sizeHint.ReturnType, "virtual prefix stripped")
	assert.True(t, sizeHint.Const)

	actions := d.Methods[2]
	assert.Equal(t, "actions", actions.Name)
	assert.Equal(t, "QList<QAction *>", actions.ReturnType)

	find := d.Methods[3]
	assert.Equal(t, "find", find.Name)
	assert.True(t, find.Static)
	require.Len(t, find.Params, 1)
	assert.Equal(t, decl.Param{Name: "id", Type: "WId"}, find.Params[0])

	show := d.Methods[4]
	assert.Equal(t, "show", show.Name)
	assert.Equal(t, decl.MethodKindSlot, show.Kind)
	assert.Empty(t, show.Params)

	require.Len(t, d.Signals, 1)
	assert.Equal(t, "windowTitleChanged", d.Signals[0].Name)
	require.Len(t, d.Signals[0].Params, 1)
	assert.Equal(t, decl.Param{Name: "title", Type: "const QString &"}, d.Signals[0].Params[0])

	require.Len(t, d.Enums, 1)
	enum := d.Enums[0]
	assert.Equal(t, "RenderFlag", enum.Name)
	require.Len(t, enum.Values, 2)
	assert.Equal(t, decl.EnumValue{Name: "DrawWindowBackground", Value: "0x1"}, enum.Values[0])
	assert.Equal(t, decl.EnumValue{Name: "DrawChildren", Value: "0x2"}, enum.Values[1])
}

func TestExtractDeclarationScopedTitle(t *testing.T) {
	p := mustParse(t, "page.html",
		`<html><body><h1>QtWebEngine::QWebEnginePage Class</h1></body></html>`)
	d := ExtractDeclaration(p)
	require.NotNil(t, d)
	assert.Equal(t, "QtWebEngine", d.Namespace)
	assert.Equal(t, "QWebEnginePage", d.Name)
	assert.Equal(t, "QtWebEngine::QWebEnginePage", d.FullName)

	p = mustParse(t, "page.html",
		`<html><body><h1>Qt.WebEngine.Page Class</h1></body></html>`)
	d = ExtractDeclaration(p)
	require.NotNil(t, d)
	assert.Equal(t, "Qt::WebEngine", d.Namespace, "dotted titles normalize")
	assert.Equal(t, "Page", d.Name)
}

func TestExtractDeclarationNonDeclarationPage(t *testing.T) {
	p := mustParse(t, "index.html",
		`<html><body><h1>Qt Widgets Examples</h1></body></html>`)
	assert.Nil(t, ExtractDeclaration(p))
}

func TestExtractDeclarationInheritsWithoutLinks(t *testing.T) {
	p := mustParse(t, "x.html",
		`<html><body><h1>T Class</h1><p>Inherits: QObject, QPaintDevice</p></body></html>`)
	d := ExtractDeclaration(p)
	require.NotNil(t, d)
	require.Len(t, d.Inherits, 2)
	assert.Equal(t, decl.TypedRef{Type: "QObject"}, d.Inherits[0])
	assert.Equal(t, decl.TypedRef{Type: "QPaintDevice"}, d.Inherits[1])
}

const namespacePageHTML = `<html>
<body>
<h1>Qt Namespace</h1>
<h2>Types</h2>
<table>
<tr><td>enum</td><td>Alignment { AlignLeft = 0x1, AlignRight = 0x2 }</td></tr>
<tr><td>flags</td><td>Qt::Orientation { Horizontal, Vertical }</td></tr>
</table>
</body>
</html>`

func TestExtractEnums(t *testing.T) {
	p := mustParse(t, "qt.html", namespacePageHTML)

	enums := ExtractEnums(p)
	require.Len(t, enums, 2)

	assert.Equal(t, "Alignment", enums[0].Name)
	require.Len(t, enums[0].Values, 2)
	assert.Equal(t, decl.EnumValue{Name: "AlignLeft", Value: "0x1"}, enums[0].Values[0])

	assert.Equal(t, "Orientation", enums[1].Name, "scoped enum names keep their last segment")
	require.Len(t, enums[1].Values, 2)
	assert.Equal(t, "Horizontal", enums[1].Values[0].Name)
	assert.Empty(t, enums[1].Values[0].Value)
}

func TestIsNamespacePage(t *testing.T) {
	assert.True(t, IsNamespacePage(mustParse(t, "qt.html", namespacePageHTML)))
	assert.False(t, IsNamespacePage(mustParse(t, "qwidget.html", widgetPageHTML)))
	assert.False(t, IsNamespacePage(mustParse(t, "index.html",
		`<html><body><h1>Examples</h1></body></html>`)))
}

func TestParseSignature(t *testing.T) {
	testCases := []struct {
		description string
		signature   string
		name        string
		params      []decl.Param
		isConst     bool
	}{
		{
			description: "no parameters",
			signature:   "show()",
			name:        "show",
		},
		{
			description: "const accessor",
			signature:   "text() const",
			name:        "text",
			isConst:     true,
		},
		{
			description: "reference parameter",
			signature:   "setText(const QString &text)",
			name:        "setText",
			params:      []decl.Param{{Name: "text", Type: "const QString &"}},
		},
		{
			description: "pointer parameter",
			signature:   "setParent(QWidget *parent)",
			name:        "setParent",
			params:      []decl.Param{{Name: "parent", Type: "QWidget *"}},
		},
		{
			description: "default value dropped",
			signature:   "scroll(int dx = 0)",
			name:        "scroll",
			params:      []decl.Param{{Name: "dx", Type: "int"}},
		},
		{
			description: "generic parameter splits on outer commas only",
			signature:   "insert(QMap<QString, int> values, int row)",
			name:        "insert",
			params: []decl.Param{
				{Name: "values", Type: "QMap<QString, int>"},
				{Name: "row", Type: "int"},
			},
		},
		{
			description: "unnamed parameter keeps whole text as type",
			signature:   "event(QEvent)",
			name:        "event",
			params:      []decl.Param{{Type: "QEvent"}},
		},
		{
			description: "void parameter list",
			signature:   "clear(void)",
			name:        "clear",
		},
	}

	for _, tc := range testCases {
		name, params, isConst := parseSignature(tc.signature)
		assert.Equal(t, tc.name, name, tc.description)
		assert.Equal(t, tc.params, params, tc.description)
		assert.Equal(t, tc.isConst, isConst, tc.description)
	}
}

func TestParseEnumRow(t *testing.T) {
	enum, ok := parseEnumRow("Alignment { AlignLeft = 0x1, AlignRight }")
	require.True(t, ok)
	assert.Equal(t, "Alignment", enum.Name)
	require.Len(t, enum.Values, 2)
	assert.Equal(t, decl.EnumValue{Name: "AlignLeft", Value: "0x1"}, enum.Values[0])
	assert.Equal(t, decl.EnumValue{Name: "AlignRight"}, enum.Values[1])

	enum, ok = parseEnumRow("BareMarker")
	require.True(t, ok)
	assert.Equal(t, "BareMarker", enum.Name)
	assert.Empty(t, enum.Values)

	_, ok = parseEnumRow("{ A, B }")
	assert.False(t, ok, "braces without a name")
}
