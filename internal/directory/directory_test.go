package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithFallbacks_FillsOnlyEmptyCollections(t *testing.T) {
	d := Directory{Veterinarians: []Veterinarian{{ID: "1", DisplayName: "Dr. A"}}}

	got := d.WithFallbacks()

	assert.Equal(t, []Veterinarian{{ID: "1", DisplayName: "Dr. A"}}, got.Veterinarians)
	assert.Equal(t, DefaultClinics(), got.Clinics)

	got = Directory{Clinics: []Clinic{{ID: "9", Address: "Main St 1"}}}.WithFallbacks()
	assert.Equal(t, DefaultVeterinarians(), got.Veterinarians)
	assert.Equal(t, []Clinic{{ID: "9", Address: "Main St 1"}}, got.Clinics)
}

func TestResolve(t *testing.T) {
	d := Default()

	v, ok := d.Veterinarian("003")
	require.True(t, ok)
	assert.Equal(t, "Dra. Ana López", v.DisplayName)

	_, ok = d.Veterinarian("999")
	assert.False(t, ok)
	_, ok = d.Veterinarian("  ")
	assert.False(t, ok)

	c, ok := d.Clinic("001")
	require.True(t, ok)
	assert.Equal(t, "C/ lafuente, 32", c.Address)

	_, ok = d.Clinic("")
	assert.False(t, ok)
}

func TestClone_IsIndependent(t *testing.T) {
	d := Default()
	dup := d.Clone()
	dup.Veterinarians[0].DisplayName = "changed"
	dup.Clinics[0].Address = "changed"

	assert.Equal(t, "Antonio", d.Veterinarians[0].DisplayName)
	assert.Equal(t, "C/ lafuente, 32", d.Clinics[0].Address)
	assert.True(t, Directory{}.IsEmpty())
	assert.False(t, d.IsEmpty())
}

func TestSearchVeterinarians(t *testing.T) {
	d := Default()

	assert.Len(t, d.SearchVeterinarians(""), 3)
	got := d.SearchVeterinarians("  ANA ")
	require.Len(t, got, 1)
	assert.Equal(t, "003", got[0].ID)
	assert.Len(t, d.SearchVeterinarians("002"), 1)
	assert.Empty(t, d.SearchVeterinarians("zzz"))
}

func TestShortName(t *testing.T) {
	cases := map[string]string{
		"Dr. House":      "House",
		"Dra. Ana López": "Ana López",
		"Antonio":        "Antonio",
		" Dr.Who ":       "Who",
		"Drake":          "Drake",
	}
	for in, want := range cases {
		assert.Equal(t, want, ShortName(in), "ShortName(%q)", in)
	}
}
