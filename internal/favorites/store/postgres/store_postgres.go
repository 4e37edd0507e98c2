// Package postgres persists favorites in PostgreSQL. Watch is implemented as
// a poll ticker that emits the full set whenever it changes.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	platformpg "udonmap/internal/platform/postgres"
	id "udonmap/pkg/domain"
)

type Store struct {
	db           *sql.DB
	pollInterval time.Duration
}

func New(db *sql.DB, pollInterval time.Duration) *Store {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Store{db: db, pollInterval: pollInterval}
}

func (s *Store) Add(ctx context.Context, userID id.UserID, shopID id.ShopID, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO favorites (user_id, shop_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, shop_id) DO NOTHING`,
		string(userID), shopID.String(), at,
	)
	if err != nil {
		return fmt.Errorf("insert favorite: %w", platformpg.Translate(err))
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, userID id.UserID, shopID id.ShopID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND shop_id = $2`,
		string(userID), shopID.String(),
	)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", platformpg.Translate(err))
	}
	return nil
}

func (s *Store) List(ctx context.Context, userID id.UserID) ([]id.ShopID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT shop_id FROM favorites WHERE user_id = $1`, string(userID))
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", platformpg.Translate(err))
	}
	defer rows.Close()

	var ids []id.ShopID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		shopID, err := id.ParseShopID(raw)
		if err != nil {
			return nil, fmt.Errorf("parse favorite shop id: %w", err)
		}
		ids = append(ids, shopID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list favorites: %w", platformpg.Translate(err))
	}
	return ids, nil
}

// Watch polls the user's favorite set and emits a snapshot whenever it
// differs from the last one delivered. Delivery stops once ctx is cancelled.
func (s *Store) Watch(ctx context.Context, userID id.UserID) (<-chan []id.ShopID, error) {
	current, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := make(chan []id.ShopID, 1)
	updates <- current
	last := fingerprint(current)

	go func() {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			snapshot, err := s.List(ctx, userID)
			if err != nil {
				// Transient poll failures keep the previous snapshot.
				continue
			}
			fp := fingerprint(snapshot)
			if fp == last {
				continue
			}
			last = fp
			select {
			case updates <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}()
	return updates, nil
}

func fingerprint(ids []id.ShopID) string {
	keys := make([]string, len(ids))
	for i, shopID := range ids {
		keys[i] = shopID.String()
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
