package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/rnc-cli/internal/config"
)

const datasetCSV = "RNC,RAZÓN SOCIAL,ACTIVIDAD ECONÓMICA,FECHA DE INICIO OPERACIONES,ESTADO,RÉGIMEN DE PAGO\n" +
	"00110344256,ACME SRL,VENTA AL POR MAYOR,01/02/2003,ACTIVO,NORMAL\n"

// fakeDGII serves the consultation form and answers every query with name.
func fakeDGII(t *testing.T, name string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`<input id="__VIEWSTATE" value="a" /><input id="__VIEWSTATEGENERATOR" value="b" /><input id="__EVENTVALIDATION" value="c" />`)) //nolint:errcheck
			return
		}
		posts.Add(1)
		if name == "" {
			w.Write([]byte(`<span id="lblMsg">no encontrado</span>`)) //nolint:errcheck
			return
		}
		w.Write([]byte(`<span id="lblNombre">` + name + `</span><span id="lblEstado">ACTIVO</span>`)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv, &posts
}

// testConfig points the global config at a temp dataset and dgiiURL.
func testConfig(t *testing.T, dgiiURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "rnc.csv")
	require.NoError(t, os.WriteFile(path, []byte(datasetCSV), 0o644))

	cfg = &config.Config{
		Dataset: config.DatasetConfig{Path: path, Delimiter: ",", Encoding: "auto"},
		DGII:    config.DGIIConfig{BaseURL: dgiiURL, TimeoutSecs: 5, Burst: 1, BreakerResetSecs: 60},
		Store:   config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(dir, "company.db")},
		Server:  config.ServerConfig{Port: 8080},
	}
	return path
}
