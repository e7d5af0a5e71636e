package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Params
	}{
		{"defaults", "", Params{Page: 1, PageSize: 20}},
		{"explicit", "page=3&pageSize=50", Params{Page: 3, PageSize: 50}},
		{"limit alias", "limit=10", Params{Page: 1, PageSize: 10}},
		{"clamped size", "pageSize=500", Params{Page: 1, PageSize: 100}},
		{"negative page", "page=-2", Params{Page: 1, PageSize: 20}},
		{"garbage", "page=abc&pageSize=x", Params{Page: 1, PageSize: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, FromQuery(q))
		})
	}
}

func TestOffsetAndPages(t *testing.T) {
	p := Params{Page: 3, PageSize: 20}
	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, 20, p.Limit())

	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))

	page := NewPage(p, 45)
	assert.Equal(t, Page{Page: 3, PageSize: 20, Total: 45, TotalPages: 3}, page)
}
