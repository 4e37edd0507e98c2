// Package service exposes catalog reads and the duplicate detector.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"udonmap/internal/catalog/models"
	"udonmap/internal/catalog/normkey"
	id "udonmap/pkg/domain"
	dErrors "udonmap/pkg/domain-errors"
	"udonmap/pkg/platform/sentinel"
)

// Store is the catalog's persistence boundary.
type Store interface {
	Insert(ctx context.Context, shop *models.ShopRecord) error
	Get(ctx context.Context, shopID id.ShopID) (*models.ShopRecord, error)
	ListPublishedByRegion(ctx context.Context, pref id.Region) ([]*models.ShopRecord, error)
}

type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("catalog store is required")
	}
	svc := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// ListByRegion returns the region's published records, optionally filtered by
// a case-insensitive keyword over name, address, and note, sorted by name.
func (s *Service) ListByRegion(ctx context.Context, pref id.Region, keyword string) ([]*models.ShopRecord, error) {
	if !pref.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown prefecture %q", pref)
	}
	shops, err := s.store.ListPublishedByRegion(ctx, pref)
	if err != nil {
		return nil, translateStoreErr(err, "failed to list shops")
	}

	if keyword != "" {
		ql := strings.ToLower(keyword)
		filtered := shops[:0]
		for _, shop := range shops {
			haystack := strings.ToLower(shop.Name + shop.Address + shop.Note)
			if strings.Contains(haystack, ql) {
				filtered = append(filtered, shop)
			}
		}
		shops = filtered
	}

	sort.Slice(shops, func(i, j int) bool { return shops[i].Name < shops[j].Name })
	return shops, nil
}

// Get returns one published record.
func (s *Service) Get(ctx context.Context, shopID id.ShopID) (*models.ShopRecord, error) {
	shop, err := s.store.Get(ctx, shopID)
	if err != nil {
		return nil, translateStoreErr(err, "failed to get shop")
	}
	return shop, nil
}

// FindDuplicate compares a candidate against the region's published set using
// normalized keys and returns the first record whose name key or address key
// matches, or nil when there is no match. A linear scan is acceptable because
// region catalogs are small.
func (s *Service) FindDuplicate(ctx context.Context, pref id.Region, name, address string) (*models.ShopRecord, error) {
	shops, err := s.store.ListPublishedByRegion(ctx, pref)
	if err != nil {
		return nil, translateStoreErr(err, "failed to scan region for duplicates")
	}

	nameKey := normkey.Key(name)
	addrKey := normkey.Key(address)
	for _, shop := range shops {
		if normkey.Key(shop.Name) == nameKey {
			return shop, nil
		}
		// Deliberately stricter than comparing empty keys as equal: a blank
		// candidate address never matches a record whose address also
		// normalizes to blank. Address is required upstream anyway.
		if addrKey != "" && normkey.Key(shop.Address) == addrKey {
			return shop, nil
		}
	}
	return nil, nil
}

// translateStoreErr maps infrastructure sentinels to coded errors with
// operator guidance where the store can say what to fix.
func translateStoreErr(err error, message string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "shop not found")
	case errors.Is(err, sentinel.ErrIndexRequired):
		return dErrors.Wrap(err, dErrors.CodeUnavailable,
			"the catalog store is missing a required index or table; provision the schema and retry")
	case errors.Is(err, sentinel.ErrPermission):
		return dErrors.Wrap(err, dErrors.CodePermission,
			"the catalog store refused access; check the service credentials")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "the catalog store is unreachable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, message)
	}
}
