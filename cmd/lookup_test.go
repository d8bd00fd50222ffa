package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/rnc-cli/internal/company"
)

func TestRunLookup_LocalHit(t *testing.T) {
	srv, posts := fakeDGII(t, "SHOULD NOT BE USED")
	testConfig(t, srv.URL)

	var buf bytes.Buffer
	require.NoError(t, runLookup(context.Background(), &buf, "001-1034425-6", false, "json"))

	var got map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "ACME SRL", got["nombre"])
	assert.Equal(t, "ACTIVO", got["estado"])
	assert.Equal(t, "csv", got["source"])
	assert.Equal(t, int32(0), posts.Load())
}

func TestRunLookup_RemoteYAML(t *testing.T) {
	srv, posts := fakeDGII(t, "CONSTRUCTORA DEL CARIBE SRL")
	testConfig(t, srv.URL)

	var buf bytes.Buffer
	require.NoError(t, runLookup(context.Background(), &buf, "101010632", false, "yaml"))

	var got map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "CONSTRUCTORA DEL CARIBE SRL", got["nombre"])
	assert.Equal(t, "web", got["source"])
	assert.Equal(t, "101010632", got["rnc"])
	assert.Equal(t, int32(1), posts.Load())
}

func TestRunLookup_NotFound(t *testing.T) {
	srv, _ := fakeDGII(t, "")
	testConfig(t, srv.URL)

	var buf bytes.Buffer
	err := runLookup(context.Background(), &buf, "40212345678", false, "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RNC_NOT_FOUND")
	assert.Empty(t, buf.String())
}

func TestRunLookup_WithEntity(t *testing.T) {
	srv, _ := fakeDGII(t, "")
	testConfig(t, srv.URL)

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	sq := st.(*company.SQLiteStore)
	require.NoError(t, sq.Close())

	var buf bytes.Buffer
	require.NoError(t, runLookup(context.Background(), &buf, "00110344256", true, "json"))

	var got struct {
		Record      map[string]string `json:"record"`
		CompanyInDB bool              `json:"company_in_db"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "ACME SRL", got.Record["nombre"])
	assert.False(t, got.CompanyInDB)
}

func TestWriteOutput_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := writeOutput(&buf, "xml", map[string]string{"a": "b"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}
