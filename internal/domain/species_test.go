package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanSpeciesName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"elk", "elk"},
		{"Mountain_Lion", "mountain lion"},
		{"elk (Cervus canadensis)", "elk"},
		{"  Black_Bear  (sow with cubs) ", "black bear"},
		{"MULE  DEER", "mule deer"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CleanSpeciesName(tc.in), "in=%q", tc.in)
	}
}

func TestIsRecognizedSpecies(t *testing.T) {
	assert.True(t, IsRecognizedSpecies("elk"))
	assert.True(t, IsRecognizedSpecies("Mountain_Lion"))
	assert.True(t, IsRecognizedSpecies("black bear (sow)"))
	assert.True(t, IsRecognizedSpecies("White-Tailed_Deer"))

	assert.False(t, IsRecognizedSpecies("sasquatch"))
	assert.False(t, IsRecognizedSpecies(""))
	assert.False(t, IsRecognizedSpecies("elkhound"))
}

func TestDisplaySpeciesName(t *testing.T) {
	assert.Equal(t, "Elk", DisplaySpeciesName("elk"))
	assert.Equal(t, "Mountain Lion", DisplaySpeciesName("mountain_lion"))
	assert.Equal(t, "White-Tailed Deer", DisplaySpeciesName("white-tailed_deer"))
	assert.Equal(t, "Bighorn Sheep", DisplaySpeciesName("Bighorn_Sheep (ram)"))
	assert.Equal(t, "", DisplaySpeciesName("   "))
}
