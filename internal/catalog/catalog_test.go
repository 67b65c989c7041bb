package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeedsDefaults(t *testing.T) {
	dir := t.TempDir()

	herbal, err := Load(dir, KindHerbal)
	require.NoError(t, err)
	assert.Len(t, herbal.All(), 5)

	plant, ok := herbal.Get("manzanilla")
	require.True(t, ok)
	assert.Equal(t, "Manzanilla (Chamomile)", plant.Name)
	assert.NotEmpty(t, plant.Uses)
	assert.NotEmpty(t, plant.Preparation)

	generic, err := Load(dir, KindGeneric)
	require.NoError(t, err)
	assert.Len(t, generic.All(), 3)

	med, ok := generic.Get("paracetamol")
	require.True(t, ok)
	assert.NotEmpty(t, med.Dosage)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "cola_de_caballo", Slug("Cola de Caballo"))
	assert.Equal(t, "aloe_vera", Slug("  Aloe Vera "))
	assert.Equal(t, "ruda", Slug("Ruda"))
}

func TestKeysSorted(t *testing.T) {
	c, err := Load(t.TempDir(), KindHerbal)
	require.NoError(t, err)

	keys := c.Keys()
	require.Len(t, keys, 5)
	for i := 1; i < len(keys); i++ {
		assert.Less(t, keys[i-1], keys[i])
	}
}

func TestSearch(t *testing.T) {
	c, err := Load(t.TempDir(), KindHerbal)
	require.NoError(t, err)

	// By common name, case-insensitive.
	got := c.Search("MANZANILLA")
	assert.Contains(t, got, "manzanilla")

	// By scientific name.
	got = c.Search("matricaria")
	assert.Contains(t, got, "manzanilla")

	// By use.
	got = c.Search("digestive")
	assert.Contains(t, got, "manzanilla")
	assert.Contains(t, got, "hierba_buena")

	// Empty term returns everything.
	assert.Len(t, c.Search(""), 5)

	assert.Empty(t, c.Search("no-existe-xyz"))
}

func TestAddPersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()

	c, err := Load(dir, KindHerbal)
	require.NoError(t, err)

	slug, err := c.Add(Entry{
		Name:           "Ruda",
		ScientificName: "Ruta graveolens",
		Uses:           []string{"Dolores menstruales"},
		Preparation:    "Infusión de hojas",
		Region:         "Andes",
	})
	require.NoError(t, err)
	assert.Equal(t, "ruda", slug)

	reloaded, err := Load(dir, KindHerbal)
	require.NoError(t, err)
	entry, ok := reloaded.Get("ruda")
	require.True(t, ok)
	assert.Equal(t, "Ruta graveolens", entry.ScientificName)
	assert.Len(t, reloaded.All(), 6, "defaults plus the added entry")
}

func TestAddValidation(t *testing.T) {
	c, err := Load(t.TempDir(), KindGeneric)
	require.NoError(t, err)

	_, err = c.Add(Entry{Name: "", Uses: []string{"algo"}})
	assert.Error(t, err)

	_, err = c.Add(Entry{Name: "Aspirina"})
	assert.Error(t, err, "at least one use is required")
}

func TestAddOverwritesExistingSlug(t *testing.T) {
	c, err := Load(t.TempDir(), KindGeneric)
	require.NoError(t, err)

	_, err = c.Add(Entry{Name: "Paracetamol", Uses: []string{"Fiebre"}, Dosage: "1g cada 8 horas"})
	require.NoError(t, err)

	entry, ok := c.Get("paracetamol")
	require.True(t, ok)
	assert.Equal(t, "1g cada 8 horas", entry.Dosage)
	assert.Len(t, c.All(), 3, "same slug replaces, does not grow")
}
