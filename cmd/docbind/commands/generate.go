package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	furl "github.com/viant/afs/url"

	"github.com/docbind/docbind/config"
	"github.com/docbind/docbind/decl"
	"github.com/docbind/docbind/errors"
	"github.com/docbind/docbind/fetch"
	"github.com/docbind/docbind/logger"
	"github.com/docbind/docbind/render"
	"github.com/docbind/docbind/resolve"
	"github.com/docbind/docbind/typemap"
)

var (
	generateConfigFile string
	generateRoot       string
	generateBaseURL    string
	generateOutputDir  string
	generateFileName   string
	generateMappings   string
	generateMaxDepth   int
	generateDryRun     bool
	generateWatch      bool
)

// GenerateCmd represents the generate command
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a TypeScript declaration file from a documentation page",
	Long: `Generate a TypeScript .d.ts file from an API documentation page.

docbind fetches the root page, extracts its declaration, then follows
cross-reference links to every non-builtin type the declaration mentions,
round by round, until the dependency graph is closed or the round cap is
reached. The collected declarations are rendered as TypeScript interfaces,
namespaces, and enums.

Examples:
  docbind generate --root https://doc.qt.io/qt-6/qwidget.html
  docbind generate --root docs/qwidget.html --output web/types
  docbind generate --config docbind.toml --mappings mappings.toml --watch
  docbind generate --root docs/qwidget.html --dry-run`,
	RunE: runGenerate,
}

func init() {
	GenerateCmd.Flags().StringVarP(&generateConfigFile, "config", "c", "", "Config file (default: nearest docbind.toml)")
	GenerateCmd.Flags().StringVar(&generateRoot, "root", "", "Entry documentation page (overrides source.root)")
	GenerateCmd.Flags().StringVar(&generateBaseURL, "base-url", "", "Base URL relative links resolve against (overrides source.base_url)")
	GenerateCmd.Flags().StringVarP(&generateOutputDir, "output", "o", "", "Output directory or storage URI (overrides output.dir)")
	GenerateCmd.Flags().StringVar(&generateFileName, "file", "", "Output file name (overrides output.file_name)")
	GenerateCmd.Flags().StringVarP(&generateMappings, "mappings", "m", "", "Type mapping file (overrides registry.mappings_file)")
	GenerateCmd.Flags().IntVar(&generateMaxDepth, "max-depth", 0, "Resolution round cap (overrides resolver.max_depth)")
	GenerateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Print the generated declarations instead of writing them")
	GenerateCmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "Keep running and regenerate when the mapping file changes")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadGenerateConfig(cmd)
	if err != nil {
		return err
	}

	pterm.DefaultHeader.WithFullWidth().Printf("docbind - TypeScript Declaration Generation")
	pterm.Println()

	if generateDryRun {
		pterm.Warning.Println("DRY RUN MODE: Output will not be written")
		pterm.Println()
	}
	pterm.Info.Printf("Root page: %s\n", cfg.Source.Root)
	if cfg.Registry.MappingsFile != "" {
		pterm.Info.Printf("Mappings: %s\n", cfg.Registry.MappingsFile)
	}
	if !generateDryRun {
		pterm.Info.Printf("Output: %s\n", cfg.Output.Dir)
	}
	pterm.Println()

	ctx := cmd.Context()
	p, err := newPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	if err := p.run(ctx); err != nil {
		return err
	}
	if !generateWatch {
		return nil
	}
	return p.watch(ctx)
}

// loadGenerateConfig layers flag overrides on top of the loaded
// configuration and validates the result.
func loadGenerateConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if generateConfigFile != "" {
		cfg, err = config.LoadFromFile(generateConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if generateRoot != "" {
		cfg.Source.Root = generateRoot
	}
	if generateBaseURL != "" {
		cfg.Source.BaseURL = generateBaseURL
	}
	if generateOutputDir != "" {
		cfg.Output.Dir = generateOutputDir
	}
	if generateFileName != "" {
		cfg.Output.FileName = generateFileName
	}
	if generateMappings != "" {
		cfg.Registry.MappingsFile = generateMappings
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.Resolver.MaxDepth = generateMaxDepth
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// The config file may ask for different logging; flags win when set.
	if cfg.Log.JSON || cfg.Log.Verbosity > 0 {
		logJSON, _ := cmd.Flags().GetBool("log-json")
		if !cmd.Flags().Changed("log-json") {
			logJSON = cfg.Log.JSON
		}
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if verbosity == 0 {
			verbosity = cfg.Log.Verbosity
		}
		if err := logger.Initialize(logJSON, verbosity); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}
	return cfg, nil
}

// pipeline wires the generation flow end to end so watch mode can re-run
// it against a live registry.
type pipeline struct {
	cfg      *config.Config
	fs       afs.Service
	registry *typemap.Registry
	loader   *typemap.Loader
	fetcher  *fetch.Service
	tracker  *resolve.Tracker
	renderer *render.Renderer
}

func newPipeline(ctx context.Context, cfg *config.Config) (*pipeline, error) {
	fs := afs.New()
	registry := typemap.NewRegistry()
	p := &pipeline{
		cfg:      cfg,
		fs:       fs,
		registry: registry,
		loader:   typemap.NewLoader(fs),
		fetcher:  fetch.NewService(fs, fetch.NewClient(cfg.FetchTimeout())),
		tracker:  resolve.NewTracker(registry, cfg.Registry.PrimaryNamespace),
		renderer: render.NewRenderer(typemap.NewConverter(registry)),
	}
	if cfg.Source.BaseURL != "" {
		p.tracker.SetBaseURL(cfg.Source.BaseURL)
	}
	if cfg.Registry.MappingsFile != "" {
		if err := p.loader.Load(ctx, cfg.Registry.MappingsFile, registry); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// run executes one full generation: fetch the root page, resolve the
// dependency graph, render, and write (or print) the result.
func (p *pipeline) run(ctx context.Context) error {
	spinner, _ := pterm.DefaultSpinner.Start("Fetching root documentation page...")

	seed, err := p.fetcher.FetchAndParse(ctx, p.cfg.Source.Root)
	if err != nil {
		spinner.Fail("Failed to fetch root page")
		return err
	}
	if seed.Declaration == nil {
		spinner.Fail("No declaration found")
		return errors.Newf("no declaration found on %s", p.cfg.Source.Root)
	}

	root := seed.Declaration
	repo := decl.NewRepository()
	repo.AddDeclaration(root.FullName, root)
	repo.MarkVisited(root.SourceURI)

	session := resolve.NewContext(p.cfg.Resolver.MaxDepth)
	session.RegisterPage(root.SourceURI, seed.Page)

	spinner.UpdateText("Resolving type dependencies...")
	svc := resolve.NewService(repo, p.fetcher, p.tracker, resolve.Options{
		MaxConcurrent: p.cfg.Resolver.MaxConcurrentFetches,
		RatePerSecond: p.cfg.Resolver.RatePerSecond,
	})
	stats, err := svc.Resolve(ctx, session)
	if err != nil {
		spinner.Fail("Resolution failed")
		return err
	}

	spinner.UpdateText("Rendering TypeScript declarations...")
	content := p.renderer.RenderDeclarations(repo.GetAllDeclarations())
	target := furl.Join(p.cfg.Output.Dir, p.outputFileName(root))

	if generateDryRun {
		spinner.Stop()
		fmt.Println(content)
	} else {
		if err := p.fs.Upload(ctx, target, file.DefaultFileOsMode, strings.NewReader(content)); err != nil {
			spinner.Fail("Failed to write output")
			return errors.Wrapf(err, "writing %s", target)
		}
		spinner.Stop()
	}

	pterm.Println()
	if generateDryRun {
		pterm.Success.Printf("Generated %d declarations (dry run)\n", repo.Len())
	} else {
		pterm.Success.Printf("Generated %s\n", target)
	}
	pterm.Println()
	pterm.Info.Printf("Statistics:\n")
	pterm.Printf("  Declarations: %d\n", repo.Len())
	pterm.Printf("  Resolved: %d\n", stats.Resolved)
	pterm.Printf("  Unresolved: %d\n", stats.Unresolved)
	pterm.Printf("  Circular: %d\n", stats.Circular)
	pterm.Printf("  Namespace pages: %d\n", stats.NamespacePages)
	pterm.Printf("  Rounds: %d\n", stats.Rounds)
	if stats.Pending > 0 {
		pterm.Warning.Printf("  Pending after round cap: %d\n", stats.Pending)
	}
	pterm.Printf("  Duration: %s\n", stats.Duration.Round(time.Millisecond))
	pterm.Println()
	return nil
}

// watch re-loads the mapping file whenever it changes and re-runs the
// pipeline, until interrupted.
func (p *pipeline) watch(ctx context.Context) error {
	if p.cfg.Registry.MappingsFile == "" {
		return errors.Wrap(errors.ErrConfigLoad, "--watch needs registry.mappings_file so there is a file to watch")
	}

	watcher, err := config.NewWatcher(p.cfg.Registry.MappingsFile)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	watcher.OnChange(func(path string) error {
		if err := p.loader.Load(ctx, path, p.registry); err != nil {
			return err
		}
		return p.run(ctx)
	})
	watcher.Start()

	pterm.Info.Printf("Watching %s for changes (Ctrl+C to stop)\n", p.cfg.Registry.MappingsFile)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	pterm.Println()
	pterm.Info.Println("Shutting down")
	return nil
}

func (p *pipeline) outputFileName(root *decl.Declaration) string {
	if p.cfg.Output.FileName != "" {
		return p.cfg.Output.FileName
	}
	if root.Name != "" {
		return render.ToSnakeCase(root.Name) + ".d.ts"
	}
	return "types.d.ts"
}
