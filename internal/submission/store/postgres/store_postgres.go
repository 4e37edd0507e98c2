// Package postgres persists submissions in PostgreSQL. The approval path runs
// the shop insert and the submission update in one transaction.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	catalogmodels "udonmap/internal/catalog/models"
	catalogpg "udonmap/internal/catalog/store/postgres"
	platformpg "udonmap/internal/platform/postgres"
	"udonmap/internal/submission/models"
	id "udonmap/pkg/domain"
	"udonmap/pkg/platform/sentinel"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const submissionColumns = `id, pref, name, address, note, name_key, addr_key, status,
	submitted_by_uid, submitted_by_email, user_agent, created_at, updated_at,
	decided_at, decided_by, decision_reason, resulting_shop_id`

func (s *Store) Create(ctx context.Context, sub *models.SubmissionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, pref, name, address, note, name_key, addr_key, status,
			submitted_by_uid, submitted_by_email, user_agent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		sub.ID.String(), string(sub.Pref), sub.Name, sub.Address, sub.Note,
		sub.NameKey, sub.AddrKey, string(sub.Status),
		string(sub.SubmittedByUID), sub.SubmittedByEmail, sub.UserAgent,
		sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", platformpg.Translate(err))
	}
	return nil
}

func (s *Store) Get(ctx context.Context, subID id.SubmissionID) (*models.SubmissionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, subID.String())
	sub, err := scanSubmission(row)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", platformpg.Translate(err))
	}
	return sub, nil
}

func (s *Store) Update(ctx context.Context, sub *models.SubmissionRecord) error {
	return s.updateTx(ctx, s.db, sub)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// updateTx applies the update only while the stored status is still pending,
// so a racing second decision or late edit cannot rewrite a decided record.
func (s *Store) updateTx(ctx context.Context, ex execer, sub *models.SubmissionRecord) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE submissions
		SET pref = $2, name = $3, address = $4, note = $5, name_key = $6, addr_key = $7,
			status = $8, updated_at = $9, decided_at = $10, decided_by = NULLIF($11, ''),
			decision_reason = $12, resulting_shop_id = NULLIF($13, '')::uuid
		WHERE id = $1 AND status = 'pending'`,
		sub.ID.String(), string(sub.Pref), sub.Name, sub.Address, sub.Note,
		sub.NameKey, sub.AddrKey, string(sub.Status), sub.UpdatedAt,
		sub.DecidedAt, string(sub.DecidedBy), sub.DecisionReason, nullableShopID(sub.ResultingShopID),
	)
	if err != nil {
		return fmt.Errorf("update submission: %w", platformpg.Translate(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing record from one already decided.
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM submissions WHERE id = $1)`,
			sub.ID.String()).Scan(&exists); err != nil {
			return fmt.Errorf("update submission: %w", platformpg.Translate(err))
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, subID id.SubmissionID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM submissions WHERE id = $1`, subID.String())
	if err != nil {
		return fmt.Errorf("delete submission: %w", platformpg.Translate(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID id.UserID) ([]*models.SubmissionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions
		 WHERE submitted_by_uid = $1 ORDER BY created_at DESC`, string(userID))
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", platformpg.Translate(err))
	}
	defer rows.Close()
	return collectSubmissions(rows)
}

func (s *Store) ListPending(ctx context.Context) ([]*models.SubmissionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions
		 WHERE status = 'pending' ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", platformpg.Translate(err))
	}
	defer rows.Close()
	return collectSubmissions(rows)
}

func (s *Store) CountPending(ctx context.Context, userID id.UserID, max int) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT 1 FROM submissions
			WHERE submitted_by_uid = $1 AND status = 'pending'
			LIMIT $2
		) capped`, string(userID), max).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending: %w", platformpg.Translate(err))
	}
	return count, nil
}

// ApplyApproval runs the shop insert and the submission transition in a
// single transaction; neither side is visible without the other.
func (s *Store) ApplyApproval(ctx context.Context, sub *models.SubmissionRecord, shop *catalogmodels.ShopRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approval: %w", platformpg.Translate(err))
	}
	defer tx.Rollback()

	if err := catalogpg.InsertTx(ctx, tx, shop); err != nil {
		return err
	}
	if err := s.updateTx(ctx, tx, sub); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit approval: %w", platformpg.Translate(err))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*models.SubmissionRecord, error) {
	var (
		sub             models.SubmissionRecord
		idStr, prefStr  string
		statusStr       string
		uidStr          string
		decidedAt       sql.NullTime
		decidedBy       sql.NullString
		decisionReason  sql.NullString
		resultingShopID sql.NullString
	)
	err := row.Scan(&idStr, &prefStr, &sub.Name, &sub.Address, &sub.Note,
		&sub.NameKey, &sub.AddrKey, &statusStr, &uidStr, &sub.SubmittedByEmail,
		&sub.UserAgent, &sub.CreatedAt, &sub.UpdatedAt,
		&decidedAt, &decidedBy, &decisionReason, &resultingShopID)
	if err != nil {
		return nil, err
	}
	subID, err := id.ParseSubmissionID(idStr)
	if err != nil {
		return nil, err
	}
	sub.ID = subID
	sub.Pref = id.Region(prefStr)
	sub.Status = models.Status(statusStr)
	sub.SubmittedByUID = id.UserID(uidStr)
	if decidedAt.Valid {
		t := decidedAt.Time
		sub.DecidedAt = &t
	}
	if decidedBy.Valid {
		sub.DecidedBy = id.UserID(decidedBy.String)
	}
	if decisionReason.Valid {
		sub.DecisionReason = decisionReason.String
	}
	if resultingShopID.Valid {
		shopID, err := id.ParseShopID(resultingShopID.String)
		if err != nil {
			return nil, err
		}
		sub.ResultingShopID = shopID
	}
	return &sub, nil
}

func collectSubmissions(rows *sql.Rows) ([]*models.SubmissionRecord, error) {
	var out []*models.SubmissionRecord
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", platformpg.Translate(err))
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", platformpg.Translate(err))
	}
	return out, nil
}

func nullableShopID(shopID id.ShopID) string {
	if shopID.IsNil() {
		return ""
	}
	return shopID.String()
}
