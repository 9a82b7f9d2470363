package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zjrosen/rdapgw/internal/log"
	"github.com/zjrosen/rdapgw/internal/snapshot"
)

const runColumns = `id, created_at, workbook_path, enrichment_path, records, grand_total_domains,
	providers, gateway_percent, candidate_percent, self_hosted_percent, warnings`

// snapshotRepository implements snapshot.Repository using SQLite.
type snapshotRepository struct {
	db *sql.DB
}

func newSnapshotRepository(db *sql.DB) *snapshotRepository {
	return &snapshotRepository{db: db}
}

var _ snapshot.Repository = (*snapshotRepository)(nil)

func scanRun(scanner interface{ Scan(...any) error }) (*RunModel, error) {
	var m RunModel
	err := scanner.Scan(
		&m.ID, &m.CreatedAt, &m.WorkbookPath, &m.EnrichmentPath, &m.Records, &m.GrandTotalDomains,
		&m.Providers, &m.GatewayPercent, &m.CandidatePercent, &m.SelfHostedPercent, &m.Warnings,
	)
	return &m, err
}

// Save inserts a run and its shares in one transaction.
func (r *snapshotRepository) Save(ctx context.Context, run *snapshot.Run) error {
	if run.ID == "" {
		return errors.New("snapshot run has no id")
	}
	m := toRunModel(run)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.CreatedAt, m.WorkbookPath, m.EnrichmentPath, m.Records, m.GrandTotalDomains,
		m.Providers, m.GatewayPercent, m.CandidatePercent, m.SelfHostedPercent, m.Warnings,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO provider_shares (run_id, position, provider, kind, registrar_count, total_domains, market_share_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare share insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range toShareModels(run) {
		if _, err := stmt.ExecContext(ctx, s.RunID, s.Position, s.Provider, s.Kind, s.RegistrarCount, s.TotalDomains, s.MarketSharePercent); err != nil {
			return fmt.Errorf("failed to insert share for %s: %w", s.Provider, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	log.Info(log.CatStore, "snapshot saved", "id", run.ID, "shares", len(run.Shares))
	return nil
}

// FindByID returns a run with its shares.
// Returns RunNotFoundError if no run has the id.
func (r *snapshotRepository) FindByID(ctx context.Context, id string) (*snapshot.Run, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	m, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &snapshot.RunNotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find run: %w", err)
	}
	run := m.toDomain()
	if run.Shares, err = r.shares(ctx, id); err != nil {
		return nil, err
	}
	return run, nil
}

func (r *snapshotRepository) shares(ctx context.Context, runID string) ([]snapshot.ProviderShare, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT run_id, position, provider, kind, registrar_count, total_domains, market_share_percent
		FROM provider_shares WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shares: %w", err)
	}
	defer rows.Close()

	var out []snapshot.ProviderShare
	for rows.Next() {
		var m ShareModel
		if err := rows.Scan(&m.RunID, &m.Position, &m.Provider, &m.Kind, &m.RegistrarCount, &m.TotalDomains, &m.MarketSharePercent); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		out = append(out, m.toDomain())
	}
	return out, rows.Err()
}

// List returns runs newest first without shares.
func (r *snapshotRepository) List(ctx context.Context, limit int) ([]*snapshot.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []*snapshot.Run
	for rows.Next() {
		m, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, m.toDomain())
	}
	return out, rows.Err()
}

// Latest returns the newest run with its shares.
func (r *snapshotRepository) Latest(ctx context.Context) (*snapshot.Run, error) {
	runs, err := r.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, &snapshot.RunNotFoundError{}
	}
	return r.FindByID(ctx, runs[0].ID)
}
