package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFilterFromQuery(t *testing.T) {
	values, _ := url.ParseQuery("search=cobalt&sort[created_at]=DESC&sort[title]=sideways&filter[priority]=high&limit=20&page=3")
	f := ParseFilterFromQuery(values)

	assert.Equal(t, "cobalt", f.Search)
	assert.Equal(t, map[string]string{"created_at": "desc"}, f.Sort)
	assert.Equal(t, "high", f.Filter["priority"])
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 40, f.Offset)
	assert.True(t, f.WithPagination)
}

func TestParseFilterFromQuery_Defaults(t *testing.T) {
	f := ParseFilterFromQuery(url.Values{})
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Equal(t, 1, f.Page)
	assert.Zero(t, f.Offset)
	assert.NotNil(t, f.Sort)
	assert.NotNil(t, f.Filter)
}

func TestParseFilterFromQuery_Limits(t *testing.T) {
	values, _ := url.ParseQuery("limit=100000&page=-2&withPagination=false")
	f := ParseFilterFromQuery(values)
	assert.Equal(t, MaxLimit, f.Limit)
	assert.Equal(t, 1, f.Page)
	assert.False(t, f.WithPagination)
}
