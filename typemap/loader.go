package typemap

import (
	"context"
	"path"
	"strings"

	"github.com/viant/afs"

	"github.com/docbind/docbind/errors"
	"github.com/docbind/docbind/logger"
)

// Loader reads mapping payloads through a storage service, so plain paths,
// file:// and the mem:// scheme used in tests all work the same way.
type Loader struct {
	fs afs.Service
}

// NewLoader creates a mapping loader backed by a storage service.
func NewLoader(fs afs.Service) *Loader {
	return &Loader{fs: fs}
}

// Load fetches, parses and applies a mapping payload to the registry. The
// format is inferred from the URL extension. Loading is all-or-nothing: on
// any error the registry is left untouched.
func (l *Loader) Load(ctx context.Context, URL string, registry *Registry) error {
	format, err := FormatForURL(URL)
	if err != nil {
		return err
	}
	data, err := l.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return errors.Wrapf(errors.ErrConfigLoad, "reading mapping file %s: %v", URL, err)
	}
	cfg, err := ParseMappingConfig(data, format)
	if err != nil {
		return errors.Wrapf(err, "mapping file %s", URL)
	}
	if err := registry.LoadMappingConfig(cfg); err != nil {
		return errors.Wrapf(err, "mapping file %s", URL)
	}
	logger.Infow("Loaded type mappings",
		"file", URL,
		"mappings", len(cfg.Mappings),
		"templateRules", len(cfg.TemplateMappings),
		"namespaceRules", len(cfg.NamespaceMappings),
		"customRules", len(cfg.CustomRules))
	return nil
}

// FormatForURL infers the payload format from a file extension.
func FormatForURL(URL string) (string, error) {
	switch strings.ToLower(path.Ext(URL)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.Wrapf(errors.ErrConfigLoad, "cannot infer mapping format from %q", URL)
	}
}
