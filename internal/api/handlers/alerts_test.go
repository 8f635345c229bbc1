package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellwatch/internal/api/handlers"
	"sellwatch/internal/auth"
	"sellwatch/internal/models"
	"sellwatch/internal/testutil"
)

func setupAlertRouter(tc *testutil.TestContext, tokens *auth.Service) *gin.Engine {
	h := handlers.NewAlertHandler(tc.Alerts, tokens, tc.Logger)
	router := gin.New()
	router.POST("/alerts", h.CreateAlert)
	router.GET("/alerts", h.ListAlerts)
	router.GET("/alerts/unsubscribe", h.Unsubscribe)
	router.DELETE("/alerts/:id", h.DeleteAlert)
	return router
}

func TestAlertHandler_CreateAlert(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
		check      func(t *testing.T, alert models.AlertResponse)
	}{
		{
			name:       "Email Only",
			body:       `{"email":"seller@example.com","minPrice":120,"timeWindowFrom":"10:00","timeWindowTo":"16:00"}`,
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, alert models.AlertResponse) {
				require.NotNil(t, alert.Email)
				assert.Equal(t, "seller@example.com", *alert.Email)
				assert.Nil(t, alert.PushToken)
				assert.Equal(t, 120.0, alert.MinPrice)
				assert.Equal(t, "10:00", *alert.TimeWindowFrom)
				assert.True(t, alert.IsActive)
			},
		},
		{
			name:       "Push Without Token",
			body:       `{"minPrice":80,"enablePush":true}`,
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, alert models.AlertResponse) {
				assert.Nil(t, alert.Email)
				require.NotNil(t, alert.PushToken)
				assert.Equal(t, "***", *alert.PushToken)
			},
		},
		{
			name:       "Blank Email With Push",
			body:       `{"email":"","minPrice":80,"enablePush":true}`,
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, alert models.AlertResponse) {
				assert.Nil(t, alert.Email)
				require.NotNil(t, alert.PushToken)
			},
		},
		{
			name:       "Padded Email And Blank Window",
			body:       `{"email":"  seller@example.com ","minPrice":100,"timeWindowFrom":" ","timeWindowTo":""}`,
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, alert models.AlertResponse) {
				require.NotNil(t, alert.Email)
				assert.Equal(t, "seller@example.com", *alert.Email)
				assert.Nil(t, alert.TimeWindowFrom)
				assert.Nil(t, alert.TimeWindowTo)
			},
		},
		{
			name:       "Missing Min Price",
			body:       `{"email":"seller@example.com"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "minPrice is required and must be a positive number",
		},
		{
			name:       "Non Positive Min Price",
			body:       `{"email":"seller@example.com","minPrice":0}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "minPrice is required and must be a positive number",
		},
		{
			name:       "Neither Channel",
			body:       `{"minPrice":100}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Either email or push notifications must be enabled",
		},
		{
			name:       "Blank Email Without Push",
			body:       `{"email":"","minPrice":100}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Either email or push notifications must be enabled",
		},
		{
			name:       "Bad Email",
			body:       `{"email":"not-an-email","minPrice":100}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "email must be a valid email address",
		},
		{
			name:       "Bad Clock",
			body:       `{"email":"seller@example.com","minPrice":100,"timeWindowFrom":"9am"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "timeWindowFrom must be a time in HH:mm format",
		},
		{
			name:       "Window Across Midnight",
			body:       `{"email":"seller@example.com","minPrice":100,"timeWindowFrom":"22:00","timeWindowTo":"06:00"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "timeWindowFrom must not be after timeWindowTo",
		},
		{
			name:       "Malformed JSON",
			body:       `{"minPrice":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContext(t)
			router := setupAlertRouter(tc, nil)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/alerts", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantError != "" {
				var errResp models.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
				assert.Equal(t, tt.wantError, errResp.Error)
				return
			}

			var resp models.CreateAlertResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.True(t, resp.Success)
			tt.check(t, resp.Alert)

			stored, err := tc.Alerts.GetByID(context.Background(), resp.Alert.ID)
			require.NoError(t, err)
			if stored.PushToken != nil {
				assert.Equal(t, models.PendingPushToken, *stored.PushToken)
			}
		})
	}
}

func TestAlertHandler_ListAlerts(t *testing.T) {
	tc := testutil.NewTestContext(t)
	first := tc.CreateTestAlert(testutil.String("a@example.com"), nil, 100)
	second := tc.CreateTestAlert(nil, testutil.String("device-token"), 120)
	gone := tc.CreateTestAlert(testutil.String("c@example.com"), nil, 140)
	_, err := tc.Alerts.Deactivate(context.Background(), gone.ID)
	require.NoError(t, err)

	router := setupAlertRouter(tc, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/alerts", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ListAlertsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, []uuid.UUID{resp.Alerts[0].ID, resp.Alerts[1].ID})
	assert.NotContains(t, w.Body.String(), "device-token")
}

func TestAlertHandler_DeleteAlert(t *testing.T) {
	tc := testutil.NewTestContext(t)
	alert := tc.CreateTestAlert(testutil.String("a@example.com"), nil, 100)
	router := setupAlertRouter(tc, nil)

	tests := []struct {
		name       string
		id         string
		wantStatus int
		wantMsg    string
	}{
		{name: "Deactivate", id: alert.ID.String(), wantStatus: http.StatusOK, wantMsg: "Alert deactivated"},
		{name: "Already Inactive", id: alert.ID.String(), wantStatus: http.StatusOK, wantMsg: "Alert already inactive"},
		{name: "Unknown", id: uuid.New().String(), wantStatus: http.StatusNotFound},
		{name: "Malformed", id: "not-a-uuid", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/alerts/"+tt.id, nil))
			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantMsg != "" {
				var resp models.SuccessResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantMsg, resp.Message)
			}
		})
	}

	stored, err := tc.Alerts.GetByID(context.Background(), alert.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestAlertHandler_Unsubscribe(t *testing.T) {
	tc := testutil.NewTestContext(t)
	alert := tc.CreateTestAlert(testutil.String("a@example.com"), nil, 100)
	tokens := auth.NewService("unsubscribe-secret", "https://sellwatch.test")

	token, err := tokens.GenerateToken(alert.ID)
	require.NoError(t, err)

	router := setupAlertRouter(tc, tokens)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/alerts/unsubscribe?token="+token, nil))
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := tc.Alerts.GetByID(context.Background(), alert.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/alerts/unsubscribe?token=forged", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	disabled := setupAlertRouter(tc, auth.NewService("", ""))
	w = httptest.NewRecorder()
	disabled.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/alerts/unsubscribe?token="+token, nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
