package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"udonmap/internal/catalog/models"
	id "udonmap/pkg/domain"
	dErrors "udonmap/pkg/domain-errors"
)

type stubService struct {
	pref    id.Region
	keyword string
}

func (s *stubService) ListByRegion(_ context.Context, pref id.Region, keyword string) ([]*models.ShopRecord, error) {
	if !pref.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown prefecture %q", pref)
	}
	s.pref = pref
	s.keyword = keyword
	return []*models.ShopRecord{{ID: id.NewShopID(), Pref: pref, Name: "Udon Taro"}}, nil
}

func (s *stubService) Get(_ context.Context, shopID id.ShopID) (*models.ShopRecord, error) {
	return nil, dErrors.New(dErrors.CodeNotFound, "shop not found")
}

func newRouter(svc Service) chi.Router {
	r := chi.NewRouter()
	New(svc, slog.Default()).Register(r)
	return r
}

func TestHandleList(t *testing.T) {
	t.Run("passes pref and keyword through", func(t *testing.T) {
		svc := &stubService{}
		r := newRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/shops?pref=福岡&q=taro", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, id.RegionFukuoka, svc.pref)
		assert.Equal(t, "taro", svc.keyword)
	})

	t.Run("unknown prefecture returns 400", func(t *testing.T) {
		r := newRouter(&stubService{})

		req := httptest.NewRequest(http.MethodGet, "/shops?pref=東京", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleGet(t *testing.T) {
	t.Run("invalid id returns 400", func(t *testing.T) {
		r := newRouter(&stubService{})

		req := httptest.NewRequest(http.MethodGet, "/shops/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing shop returns 404", func(t *testing.T) {
		r := newRouter(&stubService{})

		req := httptest.NewRequest(http.MethodGet, "/shops/"+id.NewShopID().String(), nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
