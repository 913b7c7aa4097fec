package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/parttrack/parttrack-backend/internal/access"
	"github.com/parttrack/parttrack-backend/internal/ledger"
	"github.com/parttrack/parttrack-backend/pkg/db/models"
	"github.com/parttrack/parttrack-backend/pkg/enums"
	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
	"github.com/parttrack/parttrack-backend/pkg/logger"
	"github.com/parttrack/parttrack-backend/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

type stubAccess struct {
	access.Service
	scanResult *access.ScanResult
	scanErr    error
	authResult *access.AuthResult
	pinErr     error
}

func (s *stubAccess) Scan(context.Context, string) (*access.ScanResult, error) {
	return s.scanResult, s.scanErr
}

func (s *stubAccess) SubmitPin(context.Context, string, string) (*access.AuthResult, error) {
	return s.authResult, s.pinErr
}

type stubStock struct {
	ledger.Service
	atLocation []models.Part
}

func (s *stubStock) PartsAtLocation(context.Context, string) ([]models.Part, error) {
	return s.atLocation, nil
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAccessScan_LocationIncludesParts(t *testing.T) {
	svc := &stubAccess{scanResult: &access.ScanResult{Kind: access.ScanKindLocation, Location: "TC6-E-3"}}
	stock := &stubStock{atLocation: []models.Part{{ID: "CONN-001", Quantity: 150}}}

	rec := postJSON(t, AccessScan(svc, stock, testLogger()), map[string]string{"token": "LOC:TC6-E-3"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope types.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)

	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var resp scanResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, access.ScanKindLocation, resp.Kind)
	require.Len(t, resp.Parts, 1)
	assert.Equal(t, "CONN-001", resp.Parts[0].ID)
}

func TestAccessScan_DeniedEchoesToken(t *testing.T) {
	svc := &stubAccess{scanErr: pkgerrors.New(pkgerrors.CodeAccessDenied, "unrecognized credential").WithDetails("XYZ")}

	rec := postJSON(t, AccessScan(svc, &stubStock{}, testLogger()), map[string]string{"token": "XYZ"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var envelope types.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "ACCESS_DENIED", envelope.Code)
	assert.Equal(t, "XYZ", envelope.Details)
}

func TestAccessScan_RejectsMissingToken(t *testing.T) {
	rec := postJSON(t, AccessScan(&stubAccess{}, &stubStock{}, testLogger()), map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccessPin_Success(t *testing.T) {
	svc := &stubAccess{authResult: &access.AuthResult{
		Token:        "signed-token",
		OperatorID:   access.SupervisorOperatorID,
		OperatorName: "Supervisor",
		Role:         enums.ActorRoleSupervisor,
	}}

	rec := postJSON(t, AccessPin(svc, testLogger()), map[string]string{"challengeId": "c-1", "pin": "1234"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope types.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
}

func TestAccessPin_WrongPin(t *testing.T) {
	svc := &stubAccess{pinErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid pin")}

	rec := postJSON(t, AccessPin(svc, testLogger()), map[string]string{"challengeId": "c-1", "pin": "0000"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
