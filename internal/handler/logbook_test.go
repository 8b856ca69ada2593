package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/flightlog/internal/domain"
	"github.com/pkordes/flightlog/internal/handler"
)

func newLogbookHTTPHandler(svc handler.LogbookServicer) http.Handler {
	return handler.NewServer(nil, svc, nil, nil).Routes()
}

func postLogbookFlight(t *testing.T, svc handler.LogbookServicer, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/logbook/flights", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newLogbookHTTPHandler(svc).ServeHTTP(rec, req)
	return rec
}

// ---- GET /logbook ----------------------------------------------------------

func TestGetLogbook(t *testing.T) {
	tail := "EC-MYC"
	age := 0.3
	date := "2025-12-08"
	created := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)

	svc := &mockLogbookServicer{state: func() domain.LogbookState {
		return domain.LogbookState{
			Flights: []domain.FlightDoc{
				{ID: "d1", FlightNumber: "AM010", CreatedAt: created},
				{ID: "d2", FlightNumber: "IB6401", TailNumber: &tail, AgeYears: &age, DepartureDate: &date, CreatedAt: created},
			},
			Form: domain.DocForm{DepartureDate: "2025-12-01"},
		}
	}}

	req := httptest.NewRequest(http.MethodGet, "/logbook", nil)
	rec := httptest.NewRecorder()
	newLogbookHTTPHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.Logbook
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Loading)
	assert.Equal(t, "2025-12-01", body.Form.DepartureDate)
	require.Len(t, body.Flights, 2)

	undated := body.Flights[0]
	assert.Nil(t, undated.DepartureDate)
	assert.Nil(t, undated.TailNumber)
	assert.Equal(t, "Sin matrícula", undated.Row.TailNumber)
	assert.Equal(t, "Fecha sin definir", undated.Row.DepartureDate)
	assert.Empty(t, undated.Row.Age)

	dated := body.Flights[1]
	require.NotNil(t, dated.DepartureDate)
	assert.Equal(t, "2025-12-08", dated.DepartureDate.String())
	assert.Equal(t, "0.3 años", dated.Row.Age)
	assert.True(t, dated.CreatedAt.Equal(created))
}

func TestGetLogbook_RawJSONShape(t *testing.T) {
	svc := &mockLogbookServicer{state: func() domain.LogbookState {
		return domain.LogbookState{Loading: true, Error: "No se pudo cargar la lista de vuelos."}
	}}

	req := httptest.NewRequest(http.MethodGet, "/logbook", nil)
	rec := httptest.NewRecorder()
	newLogbookHTTPHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"flights": [],
		"loading": true,
		"error": "No se pudo cargar la lista de vuelos.",
		"saving": false,
		"form": {"flightNumber":"","tailNumber":"","ageYears":"","departureDate":""}
	}`, rec.Body.String())
}

// ---- POST /logbook/flights -------------------------------------------------

func TestCreateLogbookFlight_Created(t *testing.T) {
	var got domain.DocForm
	svc := &mockLogbookServicer{addFlight: func(_ context.Context, form domain.DocForm) (domain.FlightDoc, error) {
		got = form
		date := form.DepartureDate
		return domain.FlightDoc{ID: "d1", FlightNumber: form.FlightNumber, DepartureDate: &date}, nil
	}}

	rec := postLogbookFlight(t, svc, `{"flightNumber":"IB6401","tailNumber":"","ageYears":"8,5","departureDate":"2025-12-08"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "8,5", got.AgeYears, "the raw form reaches the service")

	var resp handler.LogbookFlight
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "d1", resp.ID)
	require.NotNil(t, resp.DepartureDate)
	assert.Equal(t, "2025-12-08", resp.DepartureDate.String())
}

func TestCreateLogbookFlight_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "validation",
			err:      fmt.Errorf("service.LogbookService.AddFlight: %w: El número de vuelo es obligatorio.", domain.ErrValidation),
			wantCode: http.StatusUnprocessableEntity,
			wantBody: "validation_error",
		},
		{
			name:     "busy",
			err:      fmt.Errorf("service.LogbookService.AddFlight: %w", domain.ErrBusy),
			wantCode: http.StatusConflict,
			wantBody: "conflict",
		},
		{
			name:     "store failure",
			err:      fmt.Errorf("service.LogbookService.AddFlight: %w", errors.New("connection refused")),
			wantCode: http.StatusBadGateway,
			wantBody: "upstream_error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockLogbookServicer{addFlight: func(context.Context, domain.DocForm) (domain.FlightDoc, error) {
				return domain.FlightDoc{}, tc.err
			}}

			rec := postLogbookFlight(t, svc, `{"flightNumber":""}`)

			require.Equal(t, tc.wantCode, rec.Code)
			var body handler.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.wantBody, body.Error.Code)
		})
	}
}

func TestCreateLogbookFlight_ValidationMessage(t *testing.T) {
	svc := &mockLogbookServicer{addFlight: func(context.Context, domain.DocForm) (domain.FlightDoc, error) {
		return domain.FlightDoc{}, fmt.Errorf("service.LogbookService.AddFlight: %w: %s", domain.ErrValidation, "La fecha debe tener formato AAAA-MM-DD.")
	}}

	rec := postLogbookFlight(t, svc, `{"flightNumber":"IB6401","departureDate":"08/12/2025"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "La fecha debe tener formato AAAA-MM-DD.", body.Error.Message)
}

func TestCreateLogbookFlight_UnknownField(t *testing.T) {
	svc := &mockLogbookServicer{addFlight: func(context.Context, domain.DocForm) (domain.FlightDoc, error) {
		t.Fatal("service must not be called")
		return domain.FlightDoc{}, nil
	}}

	rec := postLogbookFlight(t, svc, `{"flight":"IB6401"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
