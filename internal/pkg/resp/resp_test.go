package resp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"warmtransfer/internal/pkg/errs"
)

func TestRespondSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	RespondSuccess(w, httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"message": "ok"})

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
	require.JSONEq(t, `{"message":"ok"}`, w.Body.String())
}

func TestRespondError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondError(w, httptest.NewRequest(http.MethodGet, "/get_summary/r9", nil), errs.NewError(errs.ErrSummaryNotFound))

	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"detail":"No summary found for this room.","code":2201}`, w.Body.String())
}

func TestRespondError_Nil(t *testing.T) {
	w := httptest.NewRecorder()
	RespondError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRespondJSON_Unencodable(t *testing.T) {
	w := httptest.NewRecorder()
	RespondJSON(w, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, map[string]any{"ch": make(chan int)})

	require.Equal(t, http.StatusInternalServerError, w.Code)
}
