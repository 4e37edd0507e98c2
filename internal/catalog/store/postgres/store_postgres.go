// Package postgres persists the published catalog in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"udonmap/internal/catalog/models"
	platformpg "udonmap/internal/platform/postgres"
	id "udonmap/pkg/domain"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const shopColumns = `id, pref, name, address, note, status, name_key, addr_key,
	created_at, updated_at, source_submission_id, approved_by`

func (s *Store) Insert(ctx context.Context, shop *models.ShopRecord) error {
	return InsertTx(ctx, s.db, shop)
}

// InsertTx writes a shop record through any execer, so the promotion path can
// reuse it inside the approval transaction.
func InsertTx(ctx context.Context, ex interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, shop *models.ShopRecord) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO shops (id, pref, name, address, note, status, name_key, addr_key,
			created_at, updated_at, source_submission_id, approved_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''), NULLIF($12, ''))`,
		shop.ID.String(), string(shop.Pref), shop.Name, shop.Address, shop.Note,
		shop.Status, shop.NameKey, shop.AddrKey, shop.CreatedAt, shop.UpdatedAt,
		nullableID(shop.SourceSubmissionID), string(shop.ApprovedBy),
	)
	if err != nil {
		return fmt.Errorf("insert shop: %w", platformpg.Translate(err))
	}
	return nil
}

func (s *Store) Get(ctx context.Context, shopID id.ShopID) (*models.ShopRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shopColumns+` FROM shops WHERE id = $1`, shopID.String())
	shop, err := scanShop(row)
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", platformpg.Translate(err))
	}
	return shop, nil
}

func (s *Store) ListPublishedByRegion(ctx context.Context, pref id.Region) ([]*models.ShopRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+shopColumns+` FROM shops WHERE pref = $1 AND status = $2`,
		string(pref), models.StatusPublished)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", platformpg.Translate(err))
	}
	defer rows.Close()

	var out []*models.ShopRecord
	for rows.Next() {
		shop, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shop: %w", platformpg.Translate(err))
		}
		out = append(out, shop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list shops: %w", platformpg.Translate(err))
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShop(row rowScanner) (*models.ShopRecord, error) {
	var (
		shop             models.ShopRecord
		idStr, prefStr   string
		sourceSubmission sql.NullString
		approvedBy       sql.NullString
	)
	err := row.Scan(&idStr, &prefStr, &shop.Name, &shop.Address, &shop.Note,
		&shop.Status, &shop.NameKey, &shop.AddrKey, &shop.CreatedAt, &shop.UpdatedAt,
		&sourceSubmission, &approvedBy)
	if err != nil {
		return nil, err
	}
	shopID, err := id.ParseShopID(idStr)
	if err != nil {
		return nil, err
	}
	shop.ID = shopID
	shop.Pref = id.Region(prefStr)
	if sourceSubmission.Valid {
		subID, err := id.ParseSubmissionID(sourceSubmission.String)
		if err != nil {
			return nil, err
		}
		shop.SourceSubmissionID = subID
	}
	if approvedBy.Valid {
		shop.ApprovedBy = id.UserID(approvedBy.String)
	}
	return &shop, nil
}

func nullableID(subID id.SubmissionID) string {
	if subID.IsNil() {
		return ""
	}
	return subID.String()
}
