package resolve

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbind/docbind/decl"
	"github.com/docbind/docbind/errors"
	"github.com/docbind/docbind/fetch"
	"github.com/docbind/docbind/page"
	"github.com/docbind/docbind/typemap"
)

// mapFetcher serves canned results by URI and records every call.
type mapFetcher struct {
	mu    sync.Mutex
	pages map[string]*fetch.Result
	calls []string
}

var _ fetch.Fetcher = (*mapFetcher)(nil)

func (f *mapFetcher) FetchAndParse(ctx context.Context, path string) (*fetch.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.mu.Unlock()

	result, ok := f.pages[path]
	if !ok {
		return nil, errors.NewFetchError("no document at %s", path)
	}
	return result, nil
}

func (f *mapFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// chainFetcher fabricates an endless dependency chain: the document for
// ChainN declares a property of type ChainN+1 and links to its page.
type chainFetcher struct {
	mu    sync.Mutex
	calls int
}

var _ fetch.Fetcher = (*chainFetcher)(nil)

func (f *chainFetcher) FetchAndParse(ctx context.Context, path string) (*fetch.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	n := chainIndex(path)
	name := fmt.Sprintf("Chain%d", n)
	next := fmt.Sprintf("Chain%d", n+1)
	d := &decl.Declaration{
		Name:      name,
		FullName:  name,
		SourceURI: path,
		Kind:      decl.KindClass,
		Properties: []decl.Property{
			{Name: "next", Type: next},
		},
	}
	p := &page.Page{URI: path, Links: []page.Link{
		{Text: next, Href: fmt.Sprintf("chain%d.html", n+1)},
	}}
	return &fetch.Result{Declaration: d, Page: p}, nil
}

func chainIndex(path string) int {
	base := strings.TrimSuffix(path[strings.LastIndex(path, "/")+1:], ".html")
	n, _ := strconv.Atoi(strings.TrimPrefix(base, "chain"))
	return n
}

func newTestService(t *testing.T, repo *decl.Repository, fetcher fetch.Fetcher) *Service {
	t.Helper()
	tracker := NewTracker(typemap.NewRegistry(), "Qt")
	return NewService(repo, fetcher, tracker, Options{RatePerSecond: -1})
}

// seedDeclaration installs a pre-fetched root declaration the way the
// generator does: declaration merged, source document marked visited, and
// the parsed page registered for link re-scanning.
func seedDeclaration(repo *decl.Repository, session *Context, d *decl.Declaration, p *page.Page) {
	repo.AddDeclaration(d.FullName, d)
	repo.MarkVisited(d.SourceURI)
	session.RegisterPage(d.SourceURI, p)
}

func TestResolveSingleDependency(t *testing.T) {
	repo := decl.NewRepository()
	session := NewContext(0)

	seedURI := "mem://localhost/docs/widget.html"
	depURI := "mem://localhost/docs/foobaz.html"
	seedDeclaration(repo, session, &decl.Declaration{
		Name:      "Widget",
		FullName:  "Widget",
		SourceURI: seedURI,
		Kind:      decl.KindClass,
		Properties: []decl.Property{
			{Name: "baz", Type: "Foo::Baz"},
		},
	}, &page.Page{URI: seedURI, Links: []page.Link{
		{Text: "Foo::Baz", Href: "foobaz.html"},
	}})

	fetcher := &mapFetcher{pages: map[string]*fetch.Result{
		depURI: {
			Declaration: &decl.Declaration{
				Name:      "Baz",
				Namespace: "Foo",
				FullName:  "Foo::Baz",
				SourceURI: depURI,
				Kind:      decl.KindClass,
			},
			Page: &page.Page{URI: depURI},
		},
	}}

	svc := newTestService(t, repo, fetcher)
	stats, err := svc.Resolve(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Resolved)
	assert.Zero(t, stats.Unresolved)
	assert.Zero(t, stats.Circular)
	assert.Equal(t, 1, stats.Rounds)
	assert.Zero(t, stats.Pending)

	_, ok := repo.GetDeclaration("Foo::Baz")
	assert.True(t, ok, "resolved declaration merged into the repository")

	href, ok := session.LinkFor("Foo::Baz")
	require.True(t, ok)
	assert.Equal(t, depURI, href)

	assert.Equal(t, []string{depURI}, fetcher.calls)
	assert.Contains(t, repo.GetDiscoveredDocumentLinks(), depURI)
}

func TestResolveCycleRecordsCircularOnce(t *testing.T) {
	repo := decl.NewRepository()
	session := NewContext(0)

	alphaURI := "mem://localhost/docs/alpha.html"
	betaURI := "mem://localhost/docs/beta.html"
	seedDeclaration(repo, session, &decl.Declaration{
		Name:      "Alpha",
		FullName:  "Alpha",
		SourceURI: alphaURI,
		Kind:      decl.KindClass,
		Properties: []decl.Property{
			{Name: "other", Type: "Beta"},
		},
	}, &page.Page{URI: alphaURI, Links: []page.Link{
		{Text: "Beta", Href: "beta.html"},
	}})

	fetcher := &mapFetcher{pages: map[string]*fetch.Result{
		betaURI: {
			Declaration: &decl.Declaration{
				Name:      "Beta",
				FullName:  "Beta",
				SourceURI: betaURI,
				Kind:      decl.KindClass,
				Properties: []decl.Property{
					{Name: "other", Type: "Alpha"},
				},
			},
			Page: &page.Page{URI: betaURI, Links: []page.Link{
				{Text: "Alpha", Href: "alpha.html"},
			}},
		},
	}}

	svc := newTestService(t, repo, fetcher)
	stats, err := svc.Resolve(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, 1, stats.Circular)
	assert.Zero(t, stats.Unresolved)
	assert.Equal(t, 2, stats.Rounds)
	assert.Zero(t, stats.Pending)
	assert.True(t, session.IsCircular("Alpha"))
	assert.Equal(t, 2, repo.Len())

	// The same session never reworks the cycle.
	again, err := svc.Resolve(context.Background(), session)
	require.NoError(t, err)
	assert.Zero(t, again.Rounds)
	assert.Zero(t, again.Circular)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestResolveStopsAtRoundCap(t *testing.T) {
	repo := decl.NewRepository()
	session := NewContext(0)

	seedURI := "mem://localhost/chain/chain0.html"
	seedDeclaration(repo, session, &decl.Declaration{
		Name:      "Chain0",
		FullName:  "Chain0",
		SourceURI: seedURI,
		Kind:      decl.KindClass,
		Properties: []decl.Property{
			{Name: "next", Type: "Chain1"},
		},
	}, &page.Page{URI: seedURI, Links: []page.Link{
		{Text: "Chain1", Href: "chain1.html"},
	}})

	fetcher := &chainFetcher{}
	svc := newTestService(t, repo, fetcher)
	stats, err := svc.Resolve(context.Background(), session)
	require.NoError(t, err, "hitting the cap is not an error")

	assert.Equal(t, DefaultMaxRounds, stats.Rounds)
	assert.Equal(t, DefaultMaxRounds, stats.Resolved)
	assert.Equal(t, 1, stats.Pending, "the next link was scheduled but never worked")
	assert.Equal(t, DefaultMaxRounds, fetcher.calls)
	assert.Equal(t, DefaultMaxRounds+1, repo.Len())
}

func TestResolveSessionDepthOverridesCap(t *testing.T) {
	repo := decl.NewRepository()
	session := NewContext(3)

	seedURI := "mem://localhost/chain/chain0.html"
	seedDeclaration(repo, session, &decl.Declaration{
		Name:      "Chain0",
		FullName:  "Chain0",
		SourceURI: seedURI,
		Kind:      decl.KindClass,
		Properties: []decl.Property{
			{Name: "next", Type: "Chain1"},
		},
	}, &page.Page{URI: seedURI, Links: []page.Link{
		{Text: "Chain1", Href: "chain1.html"},
	}})

	svc := newTestService(t, repo, &chainFetcher{})
	stats, err := svc.Resolve(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Rounds)
	assert.Equal(t, 3, stats.Resolved)
	assert.Equal(t, 1, stats.Pending)
}

func TestResolveNamespacePageEnumPass(t *testing.T) {
	repo := decl.NewRepository()
	session := NewContext(0)

	seedURI := "mem://localhost/docs/widget.html"
	qtURI := "mem://localhost/docs/qt.html"
	seedDeclaration(repo, session, &decl.Declaration{
		Name:      "Widget",
		FullName:  "Widget",
		SourceURI: seedURI,
		Kind:      decl.KindClass,
		Properties: []decl.Property{
			{Name: "alignment", Type: "Qt::Alignment"},
		},
	}, &page.Page{URI: seedURI, Links: []page.Link{
		{Text: "Qt::Alignment", Href: "qt.html"},
	}})

	fetcher := &mapFetcher{pages: map[string]*fetch.Result{
		qtURI: {
			Declaration: &decl.Declaration{
				Name:      "Qt",
				FullName:  "Qt",
				SourceURI: qtURI,
				Kind:      decl.KindNamespace,
			},
			Enums: []decl.Enum{
				{Name: "Alignment", Values: []decl.EnumValue{
					{Name: "AlignLeft", Value: "0x1"},
					{Name: "AlignRight", Value: "0x2"},
				}},
			},
			Page: &page.Page{URI: qtURI},
		},
	}}

	svc := newTestService(t, repo, fetcher)
	stats, err := svc.Resolve(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.NamespacePages)
	assert.Zero(t, stats.Resolved)
	assert.Equal(t, 1, stats.Rounds)

	qt, ok := repo.GetDeclaration("Qt")
	require.True(t, ok, "namespace declaration merged by the enum pass")
	require.Len(t, qt.Enums, 1)
	assert.Equal(t, "Alignment", qt.Enums[0].Name)
	assert.Len(t, qt.Enums[0].Values, 2)

	// Once during the round, once in the enumeration pass.
	assert.Equal(t, []string{qtURI, qtURI}, fetcher.calls)
}

func TestResolveMissingDocumentCountsUnresolved(t *testing.T) {
	repo := decl.NewRepository()
	session := NewContext(0)

	seedURI := "mem://localhost/docs/widget.html"
	seedDeclaration(repo, session, &decl.Declaration{
		Name:      "Widget",
		FullName:  "Widget",
		SourceURI: seedURI,
		Kind:      decl.KindClass,
		Properties: []decl.Property{
			{Name: "thing", Type: "Thing"},
		},
	}, &page.Page{URI: seedURI, Links: []page.Link{
		{Text: "Thing", Href: "thing.html"},
	}})

	fetcher := &mapFetcher{pages: map[string]*fetch.Result{}}
	svc := newTestService(t, repo, fetcher)
	stats, err := svc.Resolve(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Unresolved)
	assert.Zero(t, stats.Resolved)
	assert.Equal(t, 1, stats.Rounds)
	assert.True(t, session.IsVisited("Thing"), "failed names are not retried")

	again, err := svc.Resolve(context.Background(), session)
	require.NoError(t, err)
	assert.Zero(t, again.Rounds)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestResolveSharedDocumentDetectedAsCycle(t *testing.T) {
	repo := decl.NewRepository()
	session := NewContext(0)

	seedURI := "mem://localhost/docs/widget.html"
	sharedURI := "mem://localhost/docs/shared.html"
	seedDeclaration(repo, session, &decl.Declaration{
		Name:      "Widget",
		FullName:  "Widget",
		SourceURI: seedURI,
		Kind:      decl.KindClass,
		Properties: []decl.Property{
			{Name: "bar", Type: "Foo::Bar"},
			{Name: "qux", Type: "Foo::Qux"},
		},
	}, &page.Page{URI: seedURI, Links: []page.Link{
		{Text: "Foo::Bar", Href: "shared.html"},
		{Text: "Foo::Qux", Href: "shared.html"},
	}})

	fetcher := &mapFetcher{pages: map[string]*fetch.Result{
		sharedURI: {
			Declaration: &decl.Declaration{
				Name:      "Bar",
				Namespace: "Foo",
				FullName:  "Foo::Bar",
				SourceURI: sharedURI,
				Kind:      decl.KindClass,
			},
			Page: &page.Page{URI: sharedURI},
		},
	}}

	svc := newTestService(t, repo, fetcher)
	stats, err := svc.Resolve(context.Background(), session)
	require.NoError(t, err)

	// Both dependencies point at the same document; the first claims it,
	// the second is recorded as a loop back into visited territory.
	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, 1, stats.Circular)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestResolveUnlinkedDependencyNotScheduled(t *testing.T) {
	repo := decl.NewRepository()
	session := NewContext(0)

	seed := &decl.Declaration{
		Name:      "Widget",
		FullName:  "Widget",
		SourceURI: "mem://localhost/docs/widget.html",
		Kind:      decl.KindClass,
		Properties: []decl.Property{
			{Name: "mystery", Type: "Mystery"},
		},
	}
	repo.AddDeclaration(seed.FullName, seed)
	repo.MarkVisited(seed.SourceURI)

	fetcher := &mapFetcher{pages: map[string]*fetch.Result{}}
	svc := newTestService(t, repo, fetcher)
	stats, err := svc.Resolve(context.Background(), session)
	require.NoError(t, err)

	assert.Zero(t, stats.Rounds)
	assert.Zero(t, stats.Resolved)
	assert.Zero(t, stats.Unresolved)
	assert.Zero(t, fetcher.callCount())
}

func TestResolveEmptyRepository(t *testing.T) {
	repo := decl.NewRepository()
	svc := newTestService(t, repo, &mapFetcher{})

	stats, err := svc.Resolve(context.Background(), NewContext(0))
	require.NoError(t, err)
	assert.Zero(t, stats.Rounds)
	assert.Zero(t, stats.Resolved)
}

func TestResolveCancelledContext(t *testing.T) {
	repo := decl.NewRepository()
	session := NewContext(0)

	seedURI := "mem://localhost/docs/widget.html"
	seedDeclaration(repo, session, &decl.Declaration{
		Name:      "Widget",
		FullName:  "Widget",
		SourceURI: seedURI,
		Kind:      decl.KindClass,
		Properties: []decl.Property{
			{Name: "thing", Type: "Thing"},
		},
	}, &page.Page{URI: seedURI, Links: []page.Link{
		{Text: "Thing", Href: "thing.html"},
	}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newTestService(t, repo, &mapFetcher{})
	stats, err := svc.Resolve(ctx, session)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, stats.Pending, "scheduled work is reported, not lost")
}
