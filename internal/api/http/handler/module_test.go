package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/modulehub/internal/mocks"
	"github.com/dtroode/modulehub/internal/model"
	"github.com/dtroode/modulehub/internal/testutil"
)

func newModuleHandler(t *testing.T, maxContent int64) (*Module, *mocks.ModuleService) {
	t.Helper()
	svc := mocks.NewModuleService(t)
	return NewModule(svc, testMaxBody, maxContent, testutil.MakeNoopLogger()), svc
}

func withID(req *http.Request, id string) *http.Request {
	req.SetPathValue("id", id)
	return req
}

func TestModule_Create(t *testing.T) {
	t.Parallel()

	h, svc := newModuleHandler(t, 1024)
	svc.On("Create", mock.Anything, model.Module{Name: "core", Version: "1.0.0"}).
		Return(model.Module{ID: 1, Name: "core", Version: "1.0.0"}, nil)

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/modules", strings.NewReader(`{"name":"core","version":"1.0.0"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":1`)

	rec = httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/modules", strings.NewReader(`{"version":"1.0.0"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"name is required"}`, rec.Body.String())
}

func TestModule_Create_Conflict(t *testing.T) {
	t.Parallel()

	h, svc := newModuleHandler(t, 1024)
	svc.On("Create", mock.Anything, mock.Anything).Return(model.Module{}, model.ErrConflict)

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/modules", strings.NewReader(`{"name":"core"}`)))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestModule_Count(t *testing.T) {
	t.Parallel()

	h, svc := newModuleHandler(t, 1024)
	svc.On("Count", mock.Anything, model.Where{"version": "1"}).Return(int64(3), nil)

	target := "/modules/count?where=" + url.QueryEscape(`{"version":"1"}`)
	rec := httptest.NewRecorder()
	h.Count(rec, httptest.NewRequest(http.MethodGet, target, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":3}`, rec.Body.String())
}

func TestModule_Find(t *testing.T) {
	t.Parallel()

	h, svc := newModuleHandler(t, 1024)
	svc.On("Find", mock.Anything, model.Filter{Order: []string{"name"}, Limit: 2}).Return(nil, nil)

	target := "/modules?filter=" + url.QueryEscape(`{"order":"name","limit":2}`)
	rec := httptest.NewRecorder()
	h.Find(rec, httptest.NewRequest(http.MethodGet, target, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.Find(rec, httptest.NewRequest(http.MethodGet, "/modules?filter=nope", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModule_UpdateAll(t *testing.T) {
	t.Parallel()

	h, svc := newModuleHandler(t, 1024)
	svc.On("UpdateAll", mock.Anything, model.Patch{"description": "legacy", "version": "2"}, model.Where{"version": "1"}).
		Return(int64(2), nil)

	target := "/modules?where=" + url.QueryEscape(`{"version":"1"}`)
	rec := httptest.NewRecorder()
	h.UpdateAll(rec, httptest.NewRequest(http.MethodPatch, target, strings.NewReader(`{"description":"legacy","version":"2"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())
}

func TestModule_UpdateAll_RejectsNull(t *testing.T) {
	t.Parallel()

	h, _ := newModuleHandler(t, 1024)

	rec := httptest.NewRecorder()
	h.UpdateAll(rec, httptest.NewRequest(http.MethodPatch, "/modules", strings.NewReader(`{"name":null}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"field \"name\" cannot be null"}`, rec.Body.String())
}

func TestModule_DecodeErrorsHideDecoderDetail(t *testing.T) {
	t.Parallel()

	h, _ := newModuleHandler(t, 1024)

	tests := []struct {
		name    string
		call    func(http.ResponseWriter, *http.Request)
		req     *http.Request
		wantMsg string
	}{
		{
			name:    "fractional limit",
			call:    h.Find,
			req:     httptest.NewRequest(http.MethodGet, "/modules?filter="+url.QueryEscape(`{"limit":1.5}`), nil),
			wantMsg: "invalid filter",
		},
		{
			name:    "malformed where",
			call:    h.Count,
			req:     httptest.NewRequest(http.MethodGet, "/modules/count?where="+url.QueryEscape(`{"name":`), nil),
			wantMsg: "invalid where",
		},
		{
			name:    "wrong body type",
			call:    h.Create,
			req:     httptest.NewRequest(http.MethodPost, "/modules", strings.NewReader(`{"name":42}`)),
			wantMsg: "invalid request body",
		},
		{
			name:    "unknown body field",
			call:    h.Create,
			req:     httptest.NewRequest(http.MethodPost, "/modules", strings.NewReader(`{"name":"core","owner":"x"}`)),
			wantMsg: "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.call(rec, tt.req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tt.wantMsg), rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "Go struct")
			assert.NotContains(t, rec.Body.String(), "filterQuery")
		})
	}
}

func TestModule_ByID(t *testing.T) {
	t.Parallel()

	h, svc := newModuleHandler(t, 1024)
	svc.On("Get", mock.Anything, int64(1)).Return(model.Module{ID: 1, Name: "core"}, nil)
	svc.On("Get", mock.Anything, int64(2)).Return(model.Module{}, model.ErrNotFound)
	svc.On("Update", mock.Anything, int64(1), model.Patch{"version": "2"}).Return(nil)
	svc.On("Replace", mock.Anything, int64(1), model.Module{Name: "core2"}).Return(nil)
	svc.On("Delete", mock.Anything, int64(1)).Return(nil)
	svc.On("Delete", mock.Anything, int64(2)).Return(model.ErrNotFound)

	tests := []struct {
		name       string
		call       func(http.ResponseWriter, *http.Request)
		method     string
		id         string
		body       string
		wantStatus int
	}{
		{name: "get", call: h.Get, method: http.MethodGet, id: "1", wantStatus: http.StatusOK},
		{name: "get missing", call: h.Get, method: http.MethodGet, id: "2", wantStatus: http.StatusNotFound},
		{name: "get malformed id", call: h.Get, method: http.MethodGet, id: "abc", wantStatus: http.StatusBadRequest},
		{name: "get zero id", call: h.Get, method: http.MethodGet, id: "0", wantStatus: http.StatusBadRequest},
		{name: "patch", call: h.Update, method: http.MethodPatch, id: "1", body: `{"version":"2"}`, wantStatus: http.StatusNoContent},
		{name: "patch nested value", call: h.Update, method: http.MethodPatch, id: "1", body: `{"version":{"major":2}}`, wantStatus: http.StatusBadRequest},
		{name: "patch null name", call: h.Update, method: http.MethodPatch, id: "1", body: `{"name":null}`, wantStatus: http.StatusBadRequest},
		{name: "patch empty name", call: h.Update, method: http.MethodPatch, id: "1", body: `{"name":""}`, wantStatus: http.StatusBadRequest},
		{name: "patch null optional field", call: h.Update, method: http.MethodPatch, id: "1", body: `{"description":null}`, wantStatus: http.StatusBadRequest},
		{name: "put", call: h.Replace, method: http.MethodPut, id: "1", body: `{"name":"core2"}`, wantStatus: http.StatusNoContent},
		{name: "put without name", call: h.Replace, method: http.MethodPut, id: "1", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "delete", call: h.Delete, method: http.MethodDelete, id: "1", wantStatus: http.StatusNoContent},
		{name: "delete missing", call: h.Delete, method: http.MethodDelete, id: "2", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			rec := httptest.NewRecorder()
			tt.call(rec, withID(httptest.NewRequest(tt.method, "/modules/"+tt.id, body), tt.id))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestModule_PutContent(t *testing.T) {
	t.Parallel()

	h, svc := newModuleHandler(t, 1024)
	svc.On("PutContent", mock.Anything, int64(1), "text/plain", mock.Anything).
		Return(func(_ context.Context, id int64, contentType string, r io.Reader) (model.Module, error) {
			data, err := io.ReadAll(r)
			if err != nil {
				return model.Module{}, err
			}
			return model.Module{ID: id, Name: "core", ContentType: contentType, ContentSize: int64(len(data))}, nil
		})

	req := withID(httptest.NewRequest(http.MethodPut, "/modules/1/content", strings.NewReader("hello")), "1")
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.PutContent(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"contentSize":5`)
}

func TestModule_PutContent_TooLarge(t *testing.T) {
	t.Parallel()

	h, svc := newModuleHandler(t, 4)
	svc.On("PutContent", mock.Anything, int64(1), "", mock.Anything).
		Return(func(_ context.Context, _ int64, _ string, r io.Reader) (model.Module, error) {
			_, err := io.ReadAll(r)
			return model.Module{}, err
		})

	rec := httptest.NewRecorder()
	h.PutContent(rec, withID(httptest.NewRequest(http.MethodPut, "/modules/1/content", strings.NewReader("too large")), "1"))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestModule_GetContent(t *testing.T) {
	t.Parallel()

	h, svc := newModuleHandler(t, 1024)
	svc.On("GetContent", mock.Anything, int64(1)).
		Return(model.Module{ID: 1, ContentType: "text/plain", ContentSize: 5}, io.NopCloser(strings.NewReader("hello")), nil)
	svc.On("GetContent", mock.Anything, int64(2)).
		Return(model.Module{}, nil, model.ErrStorageUnavailable)

	rec := httptest.NewRecorder()
	h.GetContent(rec, withID(httptest.NewRequest(http.MethodGet, "/modules/1/content", nil), "1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "5", rec.Header().Get("Content-Length"))
	assert.Equal(t, "hello", rec.Body.String())

	rec = httptest.NewRecorder()
	h.GetContent(rec, withID(httptest.NewRequest(http.MethodGet, "/modules/2/content", nil), "2"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
