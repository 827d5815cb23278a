package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorLifespan(t *testing.T) {
	birth, death := NewDate(1929, 10, 21), NewDate(2018, 1, 22)
	cases := []struct {
		author *Author
		want   string
	}{
		{&Author{}, ""},
		{&Author{DateOfBirth: &birth}, "1929-10-21 -"},
		{&Author{DateOfDeath: &death}, "- 2018-01-22"},
		{&Author{DateOfBirth: &birth, DateOfDeath: &death}, "1929-10-21 - 2018-01-22"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.author.Lifespan())
	}
}

func TestAuthorJSONIncludesDerivedFields(t *testing.T) {
	birth := NewDate(1929, 10, 21)
	b, err := json.Marshal(&Author{ID: 1, FirstName: "Ursula", LastName: "Le Guin", DateOfBirth: &birth})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "Le Guin, Ursula", got["display_name"])
	assert.Equal(t, "1929-10-21 -", got["lifespan"])
	assert.Equal(t, "1929-10-21", got["date_of_birth"])
	assert.Nil(t, got["date_of_death"])
	assert.NotContains(t, got, "books")

	// Derived fields are ignored on the way back in.
	var author Author
	require.NoError(t, json.Unmarshal(b, &author))
	assert.Equal(t, "Ursula", author.FirstName)
	require.NotNil(t, author.DateOfBirth)
	assert.True(t, author.DateOfBirth.Equal(birth))
}
