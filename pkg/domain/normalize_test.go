package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Milk", "milk"},
		{"trims surrounding whitespace", "  milk  ", "milk"},
		{"collapses internal runs", "weekend \t  BBQ", "weekend bbq"},
		{"blank collapses to empty", " \t\n ", ""},
		{"already canonical", "oat milk", "oat milk"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeName(tc.in))
		})
	}
}

func TestLocationValidate(t *testing.T) {
	assert.NoError(t, Location{Lat: 48.8566, Lng: 2.3522}.Validate())
	assert.NoError(t, Location{Lat: -90, Lng: 180}.Validate())
	assert.Error(t, Location{Lat: 90.0001, Lng: 0}.Validate())
	assert.Error(t, Location{Lat: 0, Lng: -180.0001}.Validate())
}
