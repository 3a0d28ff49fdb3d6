package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/bote/internal/config"
	"github.com/cleared-dev/bote/internal/gitops"
	"github.com/cleared-dev/bote/internal/id"
	"github.com/cleared-dev/bote/internal/journal"
	"github.com/cleared-dev/bote/internal/logger"
	"github.com/cleared-dev/bote/internal/members"
	"github.com/cleared-dev/bote/internal/reconcile"
	"github.com/cleared-dev/bote/internal/store"
	"github.com/cleared-dev/bote/internal/store/filestore"
	"github.com/cleared-dev/bote/internal/store/mongostore"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	repo     string
	logLevel string
}

// project is an opened bote project: its config, store and logger.
type project struct {
	root  string
	cfg   *config.Config
	store store.Store
	out   io.Writer
}

// openProject loads bote.yaml under opts.repo, attaches the logger to the
// command context and opens the configured store. The returned context
// must be used for every store call.
func openProject(cmd *cobra.Command, opts *globalOptions) (*project, context.Context, error) {
	root, err := filepath.Abs(opts.repo)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%s is not a bote project (run bote init): %w", root, err)
		}
		return nil, nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	log, err := logger.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	ctx := logger.WithContext(cmd.Context(), log)

	var st store.Store
	switch cfg.Store.Backend {
	case config.BackendMongo:
		st, err = mongostore.Connect(ctx, cfg.Store.MongoURI, cfg.Store.Database)
		if err != nil {
			return nil, nil, err
		}
	default:
		st = filestore.New(root)
	}

	return &project{root: root, cfg: cfg, store: st, out: cmd.OutOrStdout()}, ctx, nil
}

func (p *project) close(ctx context.Context) {
	if err := p.store.Close(ctx); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("closing store")
	}
}

// roster loads the current member list.
func (p *project) roster(ctx context.Context) (*members.Service, error) {
	list, err := p.store.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading members: %w", err)
	}
	return members.NewService(list), nil
}

// journal builds the mutation service over the store and roster.
func (p *project) journal(roster *members.Service) *journal.Service {
	gen := id.NewGenerator(p.store, id.WithMaxAttempts(p.cfg.IDs.MaxAttempts))
	return journal.NewService(p.store, gen, roster)
}

// matcher builds the reconciliation thresholds from config.
func (p *project) matcher() reconcile.Matcher {
	m := reconcile.DefaultMatcher()
	if t := p.cfg.Reconcile.AmountTolerance; t > 0 {
		m.Tolerance = decimal.NewFromFloat(t)
	}
	if n := p.cfg.Reconcile.MinNameLength; n > 0 {
		m.MinNameLength = n
	}
	return m
}

// commit records ledger changes in git when the file backend is used and
// auto-commit is on. Failure to commit never undoes a ledger write, so it
// is only logged.
func (p *project) commit(ctx context.Context, message string, extra ...string) {
	if p.cfg.Store.Backend == config.BackendMongo || !p.cfg.Git.AutoCommit || !gitops.IsRepo(p.root) {
		return
	}
	paths := append(filestore.Paths(), extra...)
	author := gitops.Author{Name: p.cfg.Git.AuthorName, Email: p.cfg.Git.AuthorEmail}
	hash, err := gitops.CommitPaths(p.root, message, author, paths...)
	log := logger.FromContext(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("committing ledger")
		return
	}
	if hash != "" {
		log.Debug().Str("commit", hash).Msg("ledger committed")
	}
}
