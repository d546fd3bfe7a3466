package postgres

import (
	"context"

	"daliah-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type disputeRepository struct {
	db *pgxpool.Pool
}

func NewDisputeRepository(db *pgxpool.Pool) domain.DisputeRepository {
	return &disputeRepository{db: db}
}

// Append inserts the report with the next case index for its order. The
// subselect runs inside the caller's transaction, where the order row is
// already locked, so indices are gapless and never reused.
func (r *disputeRepository) Append(ctx context.Context, report *domain.DamageReport) (int, error) {
	q := queryFrom(ctx, r.db)
	err := q.QueryRow(ctx, `
		INSERT INTO damage_reports (order_id, case_index, description, proof_hash, reporter_address)
		VALUES (
			$1,
			(SELECT COALESCE(MAX(case_index) + 1, 0) FROM damage_reports WHERE order_id = $1),
			$2, $3, $4
		)
		RETURNING case_index, created_at`,
		report.OrderID, report.Description, report.ProofHash, report.ReporterAddress,
	).Scan(&report.CaseIndex, &report.CreatedAt)
	if err != nil {
		return 0, err
	}
	return report.CaseIndex, nil
}

func (r *disputeRepository) ListByOrder(ctx context.Context, orderID int64) ([]domain.DamageReport, error) {
	q := queryFrom(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT order_id, case_index, description, proof_hash, reporter_address, created_at
		FROM damage_reports WHERE order_id = $1 ORDER BY case_index`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.DamageReport
	for rows.Next() {
		var d domain.DamageReport
		if err := rows.Scan(&d.OrderID, &d.CaseIndex, &d.Description, &d.ProofHash,
			&d.ReporterAddress, &d.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, d)
	}
	return reports, rows.Err()
}
