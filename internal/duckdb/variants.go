package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/sequana/fbfilter/internal/annotate"
	"github.com/sequana/fbfilter/internal/filter"
)

// Run describes one stored filter pass.
type Run struct {
	ID        string
	Source    Source
	Config    string // JSON rendering of the thresholds
	Accepted  int64
	CreatedAt time.Time
}

// StoredVariant is an accepted variant read back from the store.
type StoredVariant struct {
	RunID          string
	Ordinal        int64
	FreebayesScore float64
	Resume         filter.Resume
}

// WriteResult stores res as a new run and returns its id. Variants are
// batch-inserted with the Appender API in acceptance order; the run row is
// written last, and a failed write leaves nothing behind.
func (s *Store) WriteResult(ctx context.Context, res *filter.Result) (string, error) {
	runID := uuid.NewString()
	src := describeSource(res.Source())

	if err := s.appendVariants(ctx, runID, res.Variants()); err != nil {
		s.deleteRun(runID)
		return "", err
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO filter_runs VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, src.Path, src.Size, src.ModTime, res.Config().String(), int64(res.Len()), time.Now(),
	); err != nil {
		s.deleteRun(runID)
		return "", fmt.Errorf("insert run: %w", err)
	}

	return runID, nil
}

// appendVariants writes variants under runID. The appender is closed, and
// its rows flushed, before returning.
func (s *Store) appendVariants(ctx context.Context, runID string, variants []*filter.Variant) error {
	if len(variants) == 0 {
		return nil
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "filtered_variants")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for i, v := range variants {
		r := v.Resume()
		a := r.Annotation
		if a == nil {
			a = &annotate.Annotation{}
		}
		if err := appender.AppendRow(
			runID, int64(i), r.Chrom, r.Position, r.Reference, r.Alternative,
			int64(r.Depth), r.Frequency, r.StrandBalance, r.Quality,
			r.Annotated(),
			a.EffectType, a.MutationType, a.EffectImpact, a.GeneName,
			a.CDSPosition, a.CodonChange, a.ProtEffect, a.ProtSize,
		); err != nil {
			return fmt.Errorf("append variant: %w", err)
		}
	}

	if err := appender.Flush(); err != nil {
		return fmt.Errorf("flush variants: %w", err)
	}
	return nil
}

// deleteRun removes every row written for runID. Best effort: it runs on
// error paths only.
func (s *Store) deleteRun(runID string) {
	s.db.Exec("DELETE FROM filtered_variants WHERE run_id=?", runID)
	s.db.Exec("DELETE FROM filter_runs WHERE run_id=?", runID)
}

// Runs returns all stored runs, oldest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(`SELECT
		run_id, source, source_size, source_modtime, config, accepted, created_at
		FROM filter_runs
		ORDER BY created_at, run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID, &r.Source.Path, &r.Source.Size, &r.Source.ModTime,
			&r.Config, &r.Accepted, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

const variantColumns = `run_id, ordinal, chrom, pos, ref, alt, depth,
		frequency, strand_balance, freebayes_score, annotated,
		effect_type, mutation_type, effect_impact, gene_name,
		cds_position, codon_change, prot_effect, prot_size`

// RunVariants returns the variants of one run in acceptance order.
func (s *Store) RunVariants(runID string) ([]StoredVariant, error) {
	rows, err := s.db.Query(`SELECT `+variantColumns+`
		FROM filtered_variants
		WHERE run_id=?
		ORDER BY ordinal`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run variants: %w", err)
	}
	defer rows.Close()

	return scanStoredVariants(rows)
}

// VariantsByGene returns annotated variants of every run for a gene.
func (s *Store) VariantsByGene(geneName string) ([]StoredVariant, error) {
	rows, err := s.db.Query(`SELECT `+variantColumns+`
		FROM filtered_variants
		WHERE annotated AND gene_name=?
		ORDER BY run_id, ordinal`, geneName)
	if err != nil {
		return nil, fmt.Errorf("query by gene: %w", err)
	}
	defer rows.Close()

	return scanStoredVariants(rows)
}

// ClearRuns removes all stored runs and their variants.
func (s *Store) ClearRuns() error {
	if _, err := s.db.Exec("DELETE FROM filtered_variants"); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM filter_runs")
	return err
}

// scanStoredVariants scans rows into StoredVariant slices.
func scanStoredVariants(rows *sql.Rows) ([]StoredVariant, error) {
	var results []StoredVariant
	for rows.Next() {
		var sv StoredVariant
		var depth int64
		var annotated bool
		var ann annotate.Annotation
		r := &sv.Resume

		if err := rows.Scan(
			&sv.RunID, &sv.Ordinal, &r.Chrom, &r.Position, &r.Reference, &r.Alternative, &depth,
			&r.Frequency, &r.StrandBalance, &r.Quality, &annotated,
			&ann.EffectType, &ann.MutationType, &ann.EffectImpact, &ann.GeneName,
			&ann.CDSPosition, &ann.CodonChange, &ann.ProtEffect, &ann.ProtSize,
		); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}

		r.Depth = int(depth)
		sv.FreebayesScore = r.Quality
		if annotated {
			a := ann
			r.Annotation = &a
		}
		results = append(results, sv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}
	return results, nil
}
