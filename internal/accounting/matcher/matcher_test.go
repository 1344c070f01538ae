package matcher

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCategories() []Category {
	return []Category{
		{ID: uuid.New(), Name: "Listrik & Air", Keywords: []string{"token listrik", "pln", "galon", "pdam"}},
		{ID: uuid.New(), Name: "Perlengkapan", Keywords: []string{"sabun", "shampo", "pomade", "handuk"}},
		{ID: uuid.New(), Name: "Kebersihan", Keywords: []string{"sabun", "pel", "tisu"}},
		{ID: uuid.New(), Name: "Sewa", Keywords: []string{"sewa", "ruko"}},
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Token  LISTRIK", "token listrik"},
		{"sabun,cair", "sabun cair"},
		{"Listrik & Air!", "listrik air"},
		{"Kafé POMADE", "kafe pomade"},
		{"   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize(tt.input))
		})
	}
}

func TestMatch(t *testing.T) {
	cats := testCategories()
	m := New(cats)

	tests := []struct {
		name   string
		text   string
		status Status
		want   string
	}{
		{"phrase keyword", "token listrik", Matched, "Listrik & Air"},
		{"single keyword", "galon", Matched, "Listrik & Air"},
		{"category name", "bayar sewa ruko juni", Matched, "Sewa"},
		{"tie breaks to ambiguous", "sabun", Ambiguous, ""},
		{"extra keyword wins tie", "sabun handuk", Matched, "Perlengkapan"},
		{"whole words only", "pelembap", Unmatched, ""},
		{"nothing", "parkir motor", Unmatched, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := m.Match(tt.text)
			require.Equal(t, tt.status, res.Status)
			if tt.status == Matched {
				require.NotNil(t, res.Category)
				assert.Equal(t, tt.want, res.Category.Name)
			}
			if tt.status == Ambiguous {
				assert.Len(t, res.Candidates, 2)
			}
		})
	}
}

func TestStatus_MarshalText(t *testing.T) {
	b, err := Ambiguous.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "ambiguous", string(b))
	assert.Equal(t, "unknown", Status(9).String())
}
