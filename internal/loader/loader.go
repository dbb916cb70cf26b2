// Package loader supplies flat tables to the engine from a directory of
// delimited files or from an SQLite database.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/drawlens/internal/flatfile"
	"github.com/verte-zerg/drawlens/internal/game"
	"github.com/verte-zerg/drawlens/internal/model"
	"github.com/verte-zerg/drawlens/internal/store"
)

// Extension is appended to table names by DirLoader.
const Extension = ".csv"

// Loader returns the table stored under name.
type Loader interface {
	Load(ctx context.Context, name string) (flatfile.Table, error)
}

// ErrNotFound marks a table the source does not have.
var ErrNotFound = errors.New("table not found")

// DirLoader reads <Dir>/<name>.csv.
type DirLoader struct {
	Dir string
}

// Load parses one file.
func (l DirLoader) Load(ctx context.Context, name string) (flatfile.Table, error) {
	if err := ctx.Err(); err != nil {
		return flatfile.Table{}, err
	}
	path := filepath.Join(l.Dir, name+Extension)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return flatfile.Table{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return flatfile.Table{}, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close after read.
			_ = cerr
		}
	}()
	tbl, err := flatfile.ParseReader(f)
	if err != nil {
		return flatfile.Table{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	tbl.Name = name
	return tbl, nil
}

// SQLiteLoader reads tables from a store.
type SQLiteLoader struct {
	Store *store.Store
}

// Load reads one table.
func (l SQLiteLoader) Load(ctx context.Context, name string) (flatfile.Table, error) {
	tbl, err := l.Store.ReadTable(ctx, name)
	if errors.Is(err, store.ErrNoTable) {
		return flatfile.Table{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return tbl, err
}

// Bundle holds every table of one game. Optional tables that could not be
// loaded are empty and their errors are kept in Missing.
type Bundle struct {
	Master   flatfile.Table
	Holidays flatfile.Table
	DOW      flatfile.Table
	DOM      flatfile.Table
	Pairs    flatfile.Table
	Trending flatfile.Table
	Weekly   flatfile.Table
	Missing  map[string]error
}

// LoadGame loads the tables of p concurrently. A master-table failure is
// returned wrapped in model.ErrLoadFailure together with an empty bundle;
// failures of the other tables are logged and recorded in Missing.
func LoadGame(ctx context.Context, l Loader, p game.Profile) (Bundle, error) {
	var b Bundle
	optional := []struct {
		name string
		dst  *flatfile.Table
	}{
		{p.Files.Holidays, &b.Holidays},
		{p.Files.DOW, &b.DOW},
		{p.Files.DOM, &b.DOM},
		{p.Files.Pairs, &b.Pairs},
		{p.Files.Trending, &b.Trending},
		{p.Files.Weekly, &b.Weekly},
	}
	missing := make([]error, len(optional))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tbl, err := l.Load(gctx, p.Files.Master)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", model.ErrLoadFailure, p.Files.Master, err)
		}
		b.Master = tbl
		return nil
	})
	for i, t := range optional {
		i, t := i, t
		g.Go(func() error {
			tbl, err := l.Load(gctx, t.name)
			if err != nil {
				missing[i] = err
				return nil
			}
			*t.dst = tbl
			return nil
		})
	}

	logger := log.WithField("game", p.ID)
	if err := g.Wait(); err != nil {
		logger.WithError(err).Warn("failed to load draw history")
		return Bundle{}, err
	}

	b.Missing = map[string]error{}
	for i, err := range missing {
		if err == nil {
			continue
		}
		b.Missing[optional[i].name] = err
		entry := logger.WithField("table", optional[i].name)
		if errors.Is(err, ErrNotFound) {
			entry.Debug("optional table not present")
		} else {
			entry.WithError(err).Warn("failed to load optional table")
		}
	}
	if b.Master.Len() == 0 {
		logger.WithField("table", p.Files.Master).Info(model.ErrEmptyDataset.Error())
	}
	return b, nil
}

// Import copies every table of p that src has into st. It returns
// the names imported.
func Import(ctx context.Context, src Loader, st *store.Store, p game.Profile) ([]string, error) {
	names := []string{
		p.Files.Master, p.Files.Holidays, p.Files.DOW, p.Files.DOM,
		p.Files.Pairs, p.Files.Trending, p.Files.Weekly,
	}
	var imported []string
	for _, name := range names {
		tbl, err := src.Load(ctx, name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return imported, fmt.Errorf("failed to load %s: %w", name, err)
		}
		if len(tbl.Header) == 0 {
			continue
		}
		if err := st.ImportTable(ctx, tbl); err != nil {
			return imported, fmt.Errorf("failed to import %s: %w", name, err)
		}
		imported = append(imported, name)
	}
	return imported, nil
}
