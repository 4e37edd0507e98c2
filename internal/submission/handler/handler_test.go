package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"udonmap/internal/submission/models"
	id "udonmap/pkg/domain"
	dErrors "udonmap/pkg/domain-errors"
)

type stubService struct {
	submitted *models.SubmitRequest
	returned  *models.SubmissionRecord
	submitErr error
	rejected  string
}

func (s *stubService) Submit(_ context.Context, req models.SubmitRequest) (*models.SubmissionRecord, error) {
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	s.submitted = &req
	s.returned = &models.SubmissionRecord{
		ID:     id.NewSubmissionID(),
		Pref:   req.Pref,
		Name:   req.Name,
		Status: models.StatusPending,
	}
	return s.returned, nil
}

func (s *stubService) Edit(_ context.Context, subID id.SubmissionID, patch models.EditRequest) (*models.SubmissionRecord, error) {
	return &models.SubmissionRecord{ID: subID, Name: *patch.Name}, nil
}

func (s *stubService) Withdraw(context.Context, id.SubmissionID) error { return nil }

func (s *stubService) ListMine(context.Context) ([]*models.SubmissionRecord, error) {
	return nil, nil
}

func (s *stubService) ListPending(context.Context) ([]*models.SubmissionRecord, error) {
	return nil, nil
}

func (s *stubService) Approve(_ context.Context, subID id.SubmissionID) (*models.SubmissionRecord, error) {
	return &models.SubmissionRecord{ID: subID, Status: models.StatusApproved}, nil
}

func (s *stubService) Reject(_ context.Context, subID id.SubmissionID, reason string) (*models.SubmissionRecord, error) {
	s.rejected = reason
	return &models.SubmissionRecord{ID: subID, Status: models.StatusRejected, DecisionReason: reason}, nil
}

func newRouter(svc Service) chi.Router {
	h := New(svc, slog.Default())
	r := chi.NewRouter()
	h.Register(r)
	h.RegisterModeration(r)
	return r
}

func TestHandleSubmit(t *testing.T) {
	t.Run("valid request returns 201", func(t *testing.T) {
		svc := &stubService{}
		r := newRouter(svc)

		body := `{"pref":"福岡","name":"Udon Taro","address":"1-2-3 Chuo"}`
		req := httptest.NewRequest(http.MethodPost, "/submissions", strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, svc.submitted)
		assert.Equal(t, id.RegionFukuoka, svc.submitted.Pref)
	})

	t.Run("response body carries the id as a UUID string", func(t *testing.T) {
		svc := &stubService{}
		r := newRouter(svc)

		body := `{"pref":"福岡","name":"Udon Taro","address":"1-2-3 Chuo"}`
		req := httptest.NewRequest(http.MethodPost, "/submissions", strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var wire map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wire))
		got, ok := wire["id"].(string)
		require.True(t, ok, "id must serialize as a string, got %T", wire["id"])
		assert.Equal(t, svc.returned.ID.String(), got)

		parsed, err := id.ParseSubmissionID(got)
		require.NoError(t, err, "response id must round-trip through the path parser")
		assert.Equal(t, svc.returned.ID, parsed)

		assert.NotContains(t, wire, "resultingShopId", "undecided submissions must not expose a shop id")
	})

	t.Run("malformed JSON returns 400", func(t *testing.T) {
		r := newRouter(&stubService{})

		req := httptest.NewRequest(http.MethodPost, "/submissions", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown prefecture returns 400", func(t *testing.T) {
		r := newRouter(&stubService{})

		body := `{"pref":"東京","name":"Udon Taro","address":"1-2-3"}`
		req := httptest.NewRequest(http.MethodPost, "/submissions", strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rate limited submit returns 429 with Retry-After", func(t *testing.T) {
		svc := &stubService{
			submitErr: dErrors.New(dErrors.CodeRateLimited, "slow down").
				WithDetail("retry_after_seconds", 50),
		}
		r := newRouter(svc)

		body := `{"pref":"福岡","name":"Udon Taro","address":"1-2-3 Chuo"}`
		req := httptest.NewRequest(http.MethodPost, "/submissions", strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "50", rec.Header().Get("Retry-After"))
	})

	t.Run("duplicate returns 409", func(t *testing.T) {
		svc := &stubService{submitErr: dErrors.New(dErrors.CodeDuplicate, "already listed")}
		r := newRouter(svc)

		body := `{"pref":"福岡","name":"Udon Taro","address":"1-2-3 Chuo"}`
		req := httptest.NewRequest(http.MethodPost, "/submissions", strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestHandleEdit(t *testing.T) {
	t.Run("invalid id returns 400", func(t *testing.T) {
		r := newRouter(&stubService{})

		req := httptest.NewRequest(http.MethodPatch, "/submissions/not-a-uuid", strings.NewReader(`{"name":"x"}`))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty patch returns 400", func(t *testing.T) {
		r := newRouter(&stubService{})

		req := httptest.NewRequest(http.MethodPatch, "/submissions/"+id.NewSubmissionID().String(), strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("valid patch returns 200", func(t *testing.T) {
		r := newRouter(&stubService{})

		req := httptest.NewRequest(http.MethodPatch, "/submissions/"+id.NewSubmissionID().String(), strings.NewReader(`{"name":"Udon Hanako"}`))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHandleWithdraw(t *testing.T) {
	r := newRouter(&stubService{})

	req := httptest.NewRequest(http.MethodDelete, "/submissions/"+id.NewSubmissionID().String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleReject(t *testing.T) {
	t.Run("body reason is forwarded", func(t *testing.T) {
		svc := &stubService{}
		r := newRouter(svc)

		req := httptest.NewRequest(http.MethodPost,
			"/submissions/"+id.NewSubmissionID().String()+"/reject",
			strings.NewReader(`{"reason":"out of area"}`))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "out of area", svc.rejected)
	})

	t.Run("missing body rejects with the default reason", func(t *testing.T) {
		svc := &stubService{}
		r := newRouter(svc)

		req := httptest.NewRequest(http.MethodPost,
			"/submissions/"+id.NewSubmissionID().String()+"/reject", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, svc.rejected)
	})
}
