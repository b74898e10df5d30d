// Package fetch retrieves documentation pages and parses them into the
// declarations they contribute. Network URLs go through an HTTP client;
// everything else (plain paths, file://, the mem:// scheme tests use) goes
// through storage access.
package fetch

import (
	"bytes"
	"context"
	neturl "net/url"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	furl "github.com/viant/afs/url"
	"go.uber.org/zap"

	"github.com/docbind/docbind/decl"
	"github.com/docbind/docbind/errors"
	"github.com/docbind/docbind/logger"
	"github.com/docbind/docbind/page"
)

// Fetcher retrieves and parses one documentation page.
type Fetcher interface {
	FetchAndParse(ctx context.Context, path string) (*Result, error)
}

// Result is a parsed page and whatever it contributed: a class page
// carries a declaration, a namespace page carries enumerations (and a
// namespace declaration shell).
type Result struct {
	Declaration *decl.Declaration
	Enums       []decl.Enum
	Page        *page.Page
}

// Service implements Fetcher over a storage service and a network client.
type Service struct {
	fs     afs.Service
	client *Client
	log    *zap.SugaredLogger
}

// NewService creates a fetch service.
func NewService(fs afs.Service, client *Client) *Service {
	return &Service{fs: fs, client: client, log: logger.Named("fetch")}
}

// FetchAndParse retrieves a document and extracts its declaration content.
func (s *Service) FetchAndParse(ctx context.Context, path string) (*Result, error) {
	data, err := s.download(ctx, path)
	if err != nil {
		return nil, err
	}

	p, err := page.ParsePage(path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	result := &Result{Page: p, Declaration: page.ExtractDeclaration(p)}
	if page.IsNamespacePage(p) {
		result.Enums = page.ExtractEnums(p)
	}
	s.log.Debugw("Fetched document",
		"path", path,
		"links", len(p.Links),
		"hasDeclaration", result.Declaration != nil,
		"enums", len(result.Enums))
	return result, nil
}

func (s *Service) download(ctx context.Context, path string) ([]byte, error) {
	if IsNetworkURI(path) {
		return s.client.Fetch(ctx, path)
	}
	data, err := s.fs.DownloadWithURL(ctx, path)
	if err != nil {
		return nil, errors.NewFetchError("reading document %s: %v", path, err)
	}
	return data, nil
}

// IsNetworkURI reports whether a path needs the HTTP client rather than
// storage access.
func IsNetworkURI(s string) bool {
	return strings.HasPrefix(strings.ToLower(furl.Scheme(s, file.Scheme)), "http")
}

// ResolveRef resolves a link target against the document it was found on.
// Fragments are dropped; a same-page anchor resolves to the empty string;
// absolute targets pass through.
func ResolveRef(baseURI, href string) string {
	if idx := strings.Index(href, "#"); idx >= 0 {
		href = href[:idx]
	}
	if href == "" {
		return ""
	}
	if !furl.IsRelative(href) {
		return href
	}
	if IsNetworkURI(baseURI) {
		base, err := neturl.Parse(baseURI)
		if err != nil {
			return href
		}
		ref, err := neturl.Parse(href)
		if err != nil {
			return href
		}
		return base.ResolveReference(ref).String()
	}
	parent, _ := furl.Split(baseURI, file.Scheme)
	return furl.Join(parent, href)
}
