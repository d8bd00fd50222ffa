package dgii

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoqueryExtractor(t *testing.T) {
	var e GoqueryExtractor
	page, err := e.Parse([]byte(`<html><body>
<input type="hidden" id="__VIEWSTATE" value="abc==" />
<input type="hidden" id="empty" value="" />
<input type="text" id="novalue" />
<span id="lblNombre">
   ACME SRL
</span>
<div id="ctl00$cphMain$lblEstado">ACTIVO</div>
</body></html>`))
	require.NoError(t, err)

	tests := []struct {
		id     string
		want   string
		wantOK bool
	}{
		{"__VIEWSTATE", "abc==", true},
		{"empty", "", true},
		{"novalue", "", false},
		{"lblNombre", "ACME SRL", true},
		{"ctl00$cphMain$lblEstado", "ACTIVO", true},
		{"missing", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := page.Field(tt.id)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGoqueryPage_NilDocument(t *testing.T) {
	_, ok := goqueryPage{}.Field("x")
	assert.False(t, ok)
}
