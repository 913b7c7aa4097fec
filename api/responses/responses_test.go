package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
	"github.com/parttrack/parttrack-backend/pkg/logger"
	"github.com/parttrack/parttrack-backend/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_ExpectedRefusalsLogAtWarn(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: &buf})

	rec := httptest.NewRecorder()
	WriteError(context.Background(), logg, rec, pkgerrors.New(pkgerrors.CodeOutOfStock, "no stock left for CONN-002"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.NotContains(t, buf.String(), `"level":"error"`)

	var envelope types.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "OUT_OF_STOCK", envelope.Code)
	assert.Equal(t, "no stock left for CONN-002", envelope.Message)
}

func TestWriteError_InternalFailuresLogAtError(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: &buf})

	rec := httptest.NewRecorder()
	WriteError(context.Background(), logg, rec, errors.New("connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), `"level":"error"`)

	var envelope types.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "internal server error", envelope.Message)
}
