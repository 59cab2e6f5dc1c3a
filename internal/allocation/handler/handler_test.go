package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"mintgate/internal/allocation/models"
	"mintgate/internal/allocation/service"
	"mintgate/internal/allocation/store"
	"mintgate/internal/platform/middleware"
	"mintgate/pkg/domain"
)

const (
	owner      = domain.Address("0xowner")
	adminToken = "test-admin-token"
)

type HandlerSuite struct {
	suite.Suite
	router http.Handler
	ledger *store.Ledger
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	var err error
	s.ledger, err = store.NewLedger(100, 10)
	require.NoError(s.T(), err)

	svc, err := service.New(s.ledger, owner)
	require.NoError(s.T(), err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(svc, owner, logger)

	r := chi.NewRouter()
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(adminToken, logger))
		h.RegisterAdmin(r)
	})
	h.RegisterReads(r)
	s.router = r
}

func (s *HandlerSuite) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("X-Admin-Token", token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestAdminTokenEnforced() {
	rec := s.do(http.MethodPost, "/admin/phases/activate", nil, "")
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/admin/phases/activate", nil, "wrong")
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestPhaseLifecycle() {
	rec := s.do(http.MethodPost, "/admin/phases", map[string]uint64{
		"reserved_limit": 10, "premium_limit": 5, "normal_limit": 3,
	}, adminToken)
	s.Require().Equal(http.StatusCreated, rec.Code)

	var phase models.Phase
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&phase))
	s.True(phase.Created)
	s.False(phase.Active)
	s.Equal(uint64(10), phase.ReservedLimit)

	rec = s.do(http.MethodPost, "/admin/phases/activate", nil, adminToken)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/phases/current", nil, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&phase))
	s.True(phase.Active)

	rec = s.do(http.MethodPost, "/admin/phases/deactivate", nil, adminToken)
	s.Require().Equal(http.StatusOK, rec.Code)
}

func (s *HandlerSuite) TestCreateConflict() {
	rec := s.do(http.MethodPost, "/admin/phases", map[string]uint64{"reserved_limit": 10}, adminToken)
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, "/admin/phases", map[string]uint64{"reserved_limit": 10}, adminToken)
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *HandlerSuite) TestActivateWithoutCreate() {
	rec := s.do(http.MethodPost, "/admin/phases/activate", nil, adminToken)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestTransferGate() {
	rec := s.do(http.MethodGet, "/transfers/status", nil, "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var status struct {
		Allowed bool `json:"allowed"`
	}
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&status))
	s.False(status.Allowed)

	rec = s.do(http.MethodPost, "/admin/transfers/allow", nil, adminToken)
	s.Require().Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPost, "/admin/transfers/allow", nil, adminToken)
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/transfers/status", nil, "")
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&status))
	s.True(status.Allowed)
}
