package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"cartlog/internal/audit"
	"cartlog/internal/list"
	"cartlog/internal/list/handler/mocks"
	"cartlog/pkg/domain"
	dErrors "cartlog/pkg/domain-errors"
	"cartlog/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/list-mocks.go -package=mocks Service

type HandlerSuite struct {
	suite.Suite
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	service := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(service, logger).Register(r)
	return r, service
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sampleResult(name string) list.Result {
	id := domain.NewListID()
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return list.Result{
		List: list.List{ID: id, Name: name, CreatedAt: now},
		Entry: audit.Entry{
			Sequence:  1,
			Timestamp: now,
			Action:    audit.ActionCreateList,
			ListID:    id,
			ListName:  name,
		},
	}
}

func (s *HandlerSuite) TestCreateList() {
	s.Run("returns 201 with list and entry", func() {
		router, service := newTestRouter(s.T())
		service.EXPECT().CreateList(gomock.Any(), "Groceries").
			Return(sampleResult("groceries"), nil)

		rec := doJSON(s.T(), router, http.MethodPost, "/lists", map[string]any{"name": "Groceries"})
		s.Equal(http.StatusCreated, rec.Code)

		var body struct {
			List struct {
				Name  string `json:"name"`
				Items []any  `json:"items"`
			} `json:"list"`
			Entry struct {
				Sequence int64  `json:"sequence"`
				Action   string `json:"action"`
			} `json:"entry"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Equal("groceries", body.List.Name)
		s.NotNil(body.List.Items)
		s.Equal(int64(1), body.Entry.Sequence)
		s.Equal("create_list", body.Entry.Action)
	})

	s.Run("maps duplicate to 409", func() {
		router, service := newTestRouter(s.T())
		service.EXPECT().CreateList(gomock.Any(), gomock.Any()).
			Return(list.Result{}, dErrors.New(dErrors.CodeDuplicateList, "a list with that name already exists"))

		rec := doJSON(s.T(), router, http.MethodPost, "/lists", map[string]any{"name": "groceries"})
		s.Equal(http.StatusConflict, rec.Code)

		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Equal("duplicate_list", body.Error.Code)
	})

	s.Run("rejects malformed JSON without calling the service", func() {
		router, _ := newTestRouter(s.T())
		req := httptest.NewRequest(http.MethodPost, "/lists", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestGeolocation() {
	s.Run("forwards a full coordinate pair via context", func() {
		router, service := newTestRouter(s.T())
		service.EXPECT().AddItem(gomock.Any(), "groceries", "milk", int64(2)).
			DoAndReturn(func(ctx context.Context, _, _ string, _ int64) (list.Result, error) {
				loc := requestcontext.Location(ctx)
				s.Require().NotNil(loc)
				s.InDelta(48.8566, loc.Lat, 1e-9)
				s.InDelta(2.3522, loc.Lng, 1e-9)
				return sampleResult("groceries"), nil
			})

		rec := doJSON(s.T(), router, http.MethodPost, "/lists/groceries/items",
			map[string]any{"name": "milk", "quantity": 2, "lat": 48.8566, "lng": 2.3522})
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("rejects a lone coordinate", func() {
		router, _ := newTestRouter(s.T())
		rec := doJSON(s.T(), router, http.MethodPost, "/lists/groceries/items",
			map[string]any{"name": "milk", "lat": 48.8566})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("rejects out-of-range coordinates", func() {
		router, _ := newTestRouter(s.T())
		rec := doJSON(s.T(), router, http.MethodPost, "/lists",
			map[string]any{"name": "x", "lat": 123.0, "lng": 0.0})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestClientMetadata() {
	s.Run("threads client address and user agent via context", func() {
		router, service := newTestRouter(s.T())
		service.EXPECT().CreateList(gomock.Any(), "groceries").
			DoAndReturn(func(ctx context.Context, _ string) (list.Result, error) {
				s.Equal("203.0.113.7", requestcontext.ClientIP(ctx))
				s.Equal("werkzeug/1.0.1", requestcontext.UserAgent(ctx))
				return sampleResult("groceries"), nil
			})

		raw, err := json.Marshal(map[string]any{"name": "groceries"})
		s.Require().NoError(err)
		req := httptest.NewRequest(http.MethodPost, "/lists", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		req.Header.Set("User-Agent", "werkzeug/1.0.1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		s.Equal(http.StatusCreated, rec.Code)
	})

	s.Run("renders the actor's device in history entries", func() {
		router, service := newTestRouter(s.T())
		entry := sampleResult("groceries").Entry
		entry.IP = "198.51.100.4"
		entry.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
		service.EXPECT().History(gomock.Any(), "groceries").
			Return([]audit.Entry{entry}, nil)

		rec := doJSON(s.T(), router, http.MethodGet, "/lists/groceries/history", nil)
		s.Equal(http.StatusOK, rec.Code)

		var body struct {
			Entries []struct {
				IP        string `json:"ip"`
				UserAgent string `json:"user_agent"`
				Device    string `json:"device"`
			} `json:"entries"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Require().Len(body.Entries, 1)
		s.Equal("198.51.100.4", body.Entries[0].IP)
		s.Equal(entry.UserAgent, body.Entries[0].UserAgent)
		s.Contains(body.Entries[0].Device, "Chrome")
	})
}

func (s *HandlerSuite) TestAddItem() {
	s.Run("defaults quantity to one", func() {
		router, service := newTestRouter(s.T())
		service.EXPECT().AddItem(gomock.Any(), "groceries", "milk", int64(1)).
			Return(sampleResult("groceries"), nil)

		rec := doJSON(s.T(), router, http.MethodPost, "/lists/groceries/items",
			map[string]any{"name": "milk"})
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("maps overflow to 422", func() {
		router, service := newTestRouter(s.T())
		service.EXPECT().AddItem(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(list.Result{}, dErrors.New(dErrors.CodeQuantityOverflow, "quantity exceeds maximum"))

		rec := doJSON(s.T(), router, http.MethodPost, "/lists/groceries/items",
			map[string]any{"name": "milk", "quantity": 5})
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})

	s.Run("maps invalid quantity to 400", func() {
		router, service := newTestRouter(s.T())
		service.EXPECT().AddItem(gomock.Any(), gomock.Any(), gomock.Any(), int64(-1)).
			Return(list.Result{}, dErrors.New(dErrors.CodeInvalidQuantity, "quantity must be a positive integer"))

		rec := doJSON(s.T(), router, http.MethodPost, "/lists/groceries/items",
			map[string]any{"name": "milk", "quantity": -1})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestSetQuantityAndRemove() {
	s.Run("set quantity requires the field", func() {
		router, _ := newTestRouter(s.T())
		rec := doJSON(s.T(), router, http.MethodPut, "/lists/groceries/items/milk",
			map[string]any{})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("set quantity zero is accepted", func() {
		router, service := newTestRouter(s.T())
		service.EXPECT().SetQuantity(gomock.Any(), "groceries", "milk", int64(0)).
			Return(sampleResult("groceries"), nil)

		rec := doJSON(s.T(), router, http.MethodPut, "/lists/groceries/items/milk",
			map[string]any{"quantity": 0})
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("remove works without a body", func() {
		router, service := newTestRouter(s.T())
		service.EXPECT().RemoveItem(gomock.Any(), "groceries", "milk").
			Return(sampleResult("groceries"), nil)

		rec := doJSON(s.T(), router, http.MethodDelete, "/lists/groceries/items/milk", nil)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("missing item maps to 404", func() {
		router, service := newTestRouter(s.T())
		service.EXPECT().RemoveItem(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(list.Result{}, dErrors.New(dErrors.CodeItemNotFound, "item not found"))

		rec := doJSON(s.T(), router, http.MethodDelete, "/lists/groceries/items/ghost", nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *HandlerSuite) TestSnapshotAndDelete() {
	s.Run("snapshot returns the list", func() {
		router, service := newTestRouter(s.T())
		res := sampleResult("groceries")
		res.List.Items = []list.Item{{Name: "milk", Quantity: 3, UpdatedAt: res.List.CreatedAt}}
		service.EXPECT().Snapshot(gomock.Any(), "groceries").Return(res.List, nil)

		rec := doJSON(s.T(), router, http.MethodGet, "/lists/groceries", nil)
		s.Equal(http.StatusOK, rec.Code)

		var body struct {
			Items []struct {
				Name     string `json:"name"`
				Quantity int64  `json:"quantity"`
			} `json:"items"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Require().Len(body.Items, 1)
		s.Equal("milk", body.Items[0].Name)
		s.Equal(int64(3), body.Items[0].Quantity)
	})

	s.Run("deleted or unknown list maps to 404", func() {
		router, service := newTestRouter(s.T())
		service.EXPECT().Snapshot(gomock.Any(), "ghost").
			Return(list.List{}, dErrors.New(dErrors.CodeListNotFound, "list not found"))

		rec := doJSON(s.T(), router, http.MethodGet, "/lists/ghost", nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("delete accepts an optional location body", func() {
		router, service := newTestRouter(s.T())
		service.EXPECT().DeleteList(gomock.Any(), "groceries").
			Return(sampleResult("groceries"), nil)

		rec := doJSON(s.T(), router, http.MethodDelete, "/lists/groceries",
			map[string]any{"lat": 1.0, "lng": 2.0})
		s.Equal(http.StatusOK, rec.Code)
	})
}

func (s *HandlerSuite) TestHistory() {
	s.Run("per-list history", func() {
		router, service := newTestRouter(s.T())
		service.EXPECT().History(gomock.Any(), "groceries").
			Return([]audit.Entry{{Sequence: 1, Action: audit.ActionCreateList, ListName: "groceries"}}, nil)

		rec := doJSON(s.T(), router, http.MethodGet, "/lists/groceries/history", nil)
		s.Equal(http.StatusOK, rec.Code)

		var body struct {
			Entries []struct {
				Sequence int64 `json:"sequence"`
			} `json:"entries"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Require().Len(body.Entries, 1)
	})

	s.Run("global history honors since", func() {
		router, service := newTestRouter(s.T())
		service.EXPECT().HistorySince(gomock.Any(), int64(5)).Return([]audit.Entry{}, nil)

		rec := doJSON(s.T(), router, http.MethodGet, "/history?since=5", nil)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("since defaults to zero", func() {
		router, service := newTestRouter(s.T())
		service.EXPECT().HistorySince(gomock.Any(), int64(0)).Return([]audit.Entry{}, nil)

		rec := doJSON(s.T(), router, http.MethodGet, "/history", nil)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("rejects a malformed since", func() {
		router, _ := newTestRouter(s.T())
		rec := doJSON(s.T(), router, http.MethodGet, "/history?since=later", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("maps storage faults to 503", func() {
		router, service := newTestRouter(s.T())
		service.EXPECT().History(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeStorageUnavailable, "audit read failed"))

		rec := doJSON(s.T(), router, http.MethodGet, "/lists/groceries/history", nil)
		s.Equal(http.StatusServiceUnavailable, rec.Code)
	})
}
