package goodmore

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageParams(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		wantPage    int
		wantPerPage int
	}{
		{"defaults", "/good-more/sent", 1, 20},
		{"explicit", "/good-more/sent?page=3&per_page=50", 3, 50},
		{"per_page capped", "/good-more/sent?per_page=500", 1, 100},
		{"zero page ignored", "/good-more/sent?page=0", 1, 20},
		{"garbage ignored", "/good-more/sent?page=abc&per_page=-5", 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.url, nil)
			page, perPage := pageParams(r)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPerPage, perPage)
		})
	}
}

func TestPaginate(t *testing.T) {
	p := paginate(2, 20, 45)
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 45, p.Total)
	assert.Equal(t, 3, p.LastPage)

	assert.Equal(t, 0, paginate(1, 20, 0).LastPage)
	assert.Equal(t, 1, paginate(1, 20, 20).LastPage)
}
