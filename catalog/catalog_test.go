package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bhakti-thakur/Dine-o-saur/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterKeepsRestaurantsSharingATag(t *testing.T) {
	restaurants := []models.Restaurant{
		{ID: "a", Tags: []string{"spicy", "vegetarian"}},
		{ID: "b", Tags: []string{"sweet"}},
	}

	got := Filter(restaurants, []string{"spicy"})

	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestFilterEmptyPreferencesIsIdentity(t *testing.T) {
	restaurants := Restaurants()

	got := Filter(restaurants, nil)

	assert.Equal(t, restaurants, got)
}

func TestUnionPreferencesKeepsFirstSeenOrder(t *testing.T) {
	users := []models.User{
		{ID: "u1", Preferences: []string{"thai", "spicy"}},
		{ID: "u2", Preferences: []string{"spicy", "vegan", "thai"}},
	}

	assert.Equal(t, []string{"thai", "spicy", "vegan"}, UnionPreferences(users))
	assert.Empty(t, UnionPreferences(nil))
}

func TestMergeDropsDuplicateIDs(t *testing.T) {
	got := Merge(
		[]models.Restaurant{{ID: "1", Name: "first"}},
		[]models.Restaurant{{ID: "1", Name: "second"}, {ID: "2"}},
	)

	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Name)
}

func TestBuiltinRestaurantsUseKnownTags(t *testing.T) {
	for _, r := range Restaurants() {
		for _, tag := range r.Tags {
			assert.Truef(t, IsKnownPreference(tag), "restaurant %s has unknown tag %q", r.ID, tag)
		}
	}
}

func TestRestaurantsReturnsCopy(t *testing.T) {
	list := Restaurants()
	list[0].Tags[0] = "changed"

	assert.NotEqual(t, "changed", Restaurants()[0].Tags[0])
}

func TestLoadRestaurants(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	raw := []byte(`
restaurants:
  - id: r1
    name: Noodle Bar
    cuisine: Thai
    priceRange: $
    rating: 4.1
    tags: [Thai, " spicy "]
  - id: r2
    name: Leaf
    tags: [vegan]
`)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	got, err := LoadRestaurants(path)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"thai", "spicy"}, got[0].Tags)
	assert.Equal(t, 4.1, got[0].Rating)
}

func TestParseRestaurantsRejectsDuplicates(t *testing.T) {
	_, err := ParseRestaurants([]byte(`
restaurants:
  - {id: r1, name: A}
  - {id: r1, name: B}
`))
	assert.Error(t, err)

	_, err = ParseRestaurants([]byte(`restaurants: []`))
	assert.Error(t, err)
}
