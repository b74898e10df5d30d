// Package resolve discovers the type dependencies of parsed declarations
// and settles them round by round: each round fetches the documents the
// pending dependencies link to, merges the declarations they yield, and
// re-scans the repository for newly reachable types. The loop ends when a
// round schedules nothing new or when the round cap is reached, whichever
// comes first.
package resolve

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/docbind/docbind/decl"
	"github.com/docbind/docbind/errors"
	"github.com/docbind/docbind/fetch"
	"github.com/docbind/docbind/logger"
)

// DefaultMaxRounds bounds the fixpoint loop for sessions that do not set
// their own depth.
const DefaultMaxRounds = 50

const (
	defaultMaxConcurrent = 8
	defaultRatePerSecond = 10
)

// Options tunes a resolution service. Zero values pick the defaults.
type Options struct {
	// MaxRounds caps the fixpoint loop when the session's MaxDepth is
	// unset.
	MaxRounds int
	// MaxConcurrent bounds how many documents one round fetches at once.
	MaxConcurrent int
	// RatePerSecond throttles network fetches; storage reads are never
	// throttled. Negative disables throttling.
	RatePerSecond float64
}

// Stats summarizes one resolution session. Pending counts dependencies
// still scheduled when the session ended, which is non-zero only when the
// round cap cut the loop short.
type Stats struct {
	Resolved       int
	Unresolved     int
	Circular       int
	NamespacePages int
	Rounds         int
	Pending        int
	Duration       time.Duration
}

// Service drives bounded fixpoint dependency resolution over a shared
// declaration repository. Per-item failures never abort a session: failed
// fetches count as unresolved, reference cycles are recorded and skipped,
// and hitting the round cap returns partial results with a warning.
type Service struct {
	repo    *decl.Repository
	fetcher fetch.Fetcher
	tracker *Tracker
	limiter *rate.Limiter
	log     *zap.SugaredLogger

	maxRounds     int
	maxConcurrent int
}

// NewService wires a resolution service over the repository the session
// merges into and the fetcher that loads linked documents.
func NewService(repo *decl.Repository, fetcher fetch.Fetcher, tracker *Tracker, opts Options) *Service {
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	if opts.RatePerSecond == 0 {
		opts.RatePerSecond = defaultRatePerSecond
	}
	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}
	return &Service{
		repo:          repo,
		fetcher:       fetcher,
		tracker:       tracker,
		limiter:       limiter,
		log:           logger.Named("resolve"),
		maxRounds:     opts.MaxRounds,
		maxConcurrent: opts.MaxConcurrent,
	}
}

// round is one fixpoint iteration: its 1-based number and the pending
// snapshot it settles.
type round struct {
	number int
	items  []TypeDependency
}

// outcome is the settled result of one dependency within a round.
type outcome struct {
	dep    TypeDependency
	result *fetch.Result
	err    error
}

// Resolve runs the session to completion: it scans the repository's
// declarations for dependencies, then loops fetching and merging until no
// new work appears or the round cap is hit. The returned stats are always
// usable; the error is non-nil only when ctx was cancelled.
func (s *Service) Resolve(ctx context.Context, session *Context) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}
	scanned := make(map[string]struct{})
	limit := s.roundCap(session)

	s.scanRepository(session, scanned)

	for session.PendingCount() > 0 {
		if err := ctx.Err(); err != nil {
			stats.Pending = session.PendingCount()
			stats.Duration = time.Since(start)
			return stats, err
		}
		if session.CurrentDepth >= limit {
			s.log.Warnw("Resolution round cap reached, returning partial results",
				"cap", limit,
				"pending", session.PendingCount(),
				"session", session.SessionID)
			break
		}
		session.CurrentDepth++
		r := &round{number: session.CurrentDepth, items: session.TakePending()}
		stats.Rounds = r.number
		s.log.Debugw("Starting resolution round",
			"round", r.number,
			"items", len(r.items),
			"session", session.SessionID)

		s.runRound(ctx, r, session, stats)
		s.scanRepository(session, scanned)
	}

	s.resolveEnumPages(ctx, session, stats)

	stats.Pending = session.PendingCount()
	stats.Duration = time.Since(start)
	s.log.Infow("Dependency resolution complete",
		"session", session.SessionID,
		"rounds", stats.Rounds,
		"resolved", stats.Resolved,
		"unresolved", stats.Unresolved,
		"circular", stats.Circular,
		"namespacePages", stats.NamespacePages,
		"pending", stats.Pending,
		"duration", stats.Duration)
	return stats, nil
}

// roundCap returns the effective round limit for a session.
func (s *Service) roundCap(session *Context) int {
	if session.MaxDepth > 0 {
		return session.MaxDepth
	}
	return s.maxRounds
}

// runRound settles every item of the round. The visited gate runs
// serially before any fetch starts, so a document is claimed exactly once
// and a dependency whose document was already claimed is recorded as a
// reference cycle. Fetches then run concurrently; session and stats are
// only touched after all of them settle.
func (s *Service) runRound(ctx context.Context, r *round, session *Context, stats *Stats) {
	outcomes := make([]outcome, len(r.items))
	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for i, dep := range r.items {
		if s.repo.IsVisited(dep.LinkedHref) {
			outcomes[i] = outcome{dep: dep, err: errors.Wrapf(errors.ErrCircularReference,
				"document %s already visited", dep.LinkedHref)}
			continue
		}
		s.repo.MarkVisited(dep.LinkedHref)

		wg.Add(1)
		go func(i int, dep TypeDependency) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := s.throttle(ctx, dep.LinkedHref); err != nil {
				outcomes[i] = outcome{dep: dep, err: err}
				return
			}
			result, err := s.fetcher.FetchAndParse(ctx, dep.LinkedHref)
			outcomes[i] = outcome{dep: dep, result: result, err: err}
		}(i, dep)
	}
	wg.Wait()

	for _, oc := range outcomes {
		s.recordOutcome(oc, session, stats)
	}
}

// recordOutcome folds one settled dependency into the session and stats.
// Every worked type name is marked visited so it is never scheduled again,
// whatever the outcome.
func (s *Service) recordOutcome(oc outcome, session *Context, stats *Stats) {
	session.MarkVisited(oc.dep.FullName)

	switch {
	case errors.IsCircular(oc.err):
		if session.MarkCircular(oc.dep.FullName) {
			stats.Circular++
			s.log.Debugw("Circular reference recorded",
				"type", oc.dep.FullName,
				"document", oc.dep.LinkedHref)
		}
	case oc.err != nil:
		stats.Unresolved++
		s.log.Warnw("Failed to resolve type dependency",
			"type", oc.dep.FullName,
			"document", oc.dep.LinkedHref,
			"usage", oc.dep.Usage,
			"error", oc.err)
	case oc.result == nil || oc.result.Declaration == nil:
		stats.Unresolved++
		s.log.Debugw("Document yielded no declaration",
			"type", oc.dep.FullName,
			"document", oc.dep.LinkedHref)
	case oc.result.Declaration.Kind == decl.KindNamespace:
		if session.QueueEnumPage(oc.dep.LinkedHref) {
			stats.NamespacePages++
		}
		session.RecordLink(oc.dep.FullName, oc.dep.LinkedHref)
	default:
		d := oc.result.Declaration
		s.repo.AddDeclaration(d.FullName, d)
		session.RecordLink(oc.dep.FullName, oc.dep.LinkedHref)
		session.RegisterPage(d.SourceURI, oc.result.Page)
		stats.Resolved++
		s.log.Debugw("Resolved type dependency",
			"type", oc.dep.FullName,
			"declaration", d.FullName,
			"document", oc.dep.LinkedHref)
	}
}

// scanRepository extracts dependencies from declarations not yet scanned
// this session and schedules the linked ones. Declarations are scanned in
// name order so scheduling is deterministic. Returns how many dependencies
// were newly scheduled.
func (s *Service) scanRepository(session *Context, scanned map[string]struct{}) int {
	decls := s.repo.GetAllDeclarations()
	names := make([]string, 0, len(decls))
	for name := range decls {
		names = append(names, name)
	}
	sort.Strings(names)

	scheduled := 0
	for _, name := range names {
		if _, done := scanned[name]; done {
			continue
		}
		scanned[name] = struct{}{}
		d := decls[name]
		for _, dep := range s.tracker.Extract(d, session.pageFor(d.SourceURI)) {
			if dep.LinkedHref == "" {
				continue
			}
			if !session.Schedule(dep) {
				continue
			}
			s.repo.AddDiscoveredDocumentLink(dep.LinkedHref)
			session.RecordLink(dep.FullName, dep.LinkedHref)
			scheduled++
		}
	}
	return scheduled
}

// resolveEnumPages is the enumeration-only pass over namespace documents
// queued during the fixpoint loop. Each document is fetched once and its
// enumerations merged into the namespace's declaration.
func (s *Service) resolveEnumPages(ctx context.Context, session *Context, stats *Stats) {
	for _, uri := range session.TakeEnumPages() {
		if err := s.throttle(ctx, uri); err != nil {
			stats.Unresolved++
			s.log.Warnw("Skipped namespace document", "document", uri, "error", err)
			continue
		}
		result, err := s.fetcher.FetchAndParse(ctx, uri)
		if err != nil {
			stats.Unresolved++
			s.log.Warnw("Failed to fetch namespace document", "document", uri, "error", err)
			continue
		}
		if result.Declaration == nil {
			stats.Unresolved++
			s.log.Warnw("Namespace document yielded no declaration", "document", uri)
			continue
		}

		d := result.Declaration
		if len(result.Enums) > 0 {
			d.Enums = result.Enums
		}
		s.repo.AddDeclaration(d.FullName, d)
		s.log.Debugw("Merged namespace enumerations",
			"namespace", d.FullName,
			"enums", len(d.Enums),
			"document", uri)
	}
}

// throttle applies the network rate limit to a fetch about to start.
func (s *Service) throttle(ctx context.Context, uri string) error {
	if s.limiter == nil || !fetch.IsNetworkURI(uri) {
		return nil
	}
	return s.limiter.Wait(ctx)
}
