package tag

import (
	"testing"

	"masta/model"

	"github.com/stretchr/testify/assert"
)

func TestArtistFieldPrimaryOnly(t *testing.T) {
	assert.Equal(t, "Massive Attack", ArtistField("Massive Attack", nil))
}

func TestArtistFieldSingleFeatured(t *testing.T) {
	// A single featured credit does not switch to the multi-artist form.
	featured := []model.Artist{{Name: "Horace Andy"}}
	assert.Equal(t, "Massive Attack", ArtistField("Massive Attack", featured))
}

func TestArtistFieldMultipleFeatured(t *testing.T) {
	featured := []model.Artist{
		{Name: "Horace Andy"},
		{Name: "Liz Fraser"},
	}
	assert.Equal(t, "Massive Attack;Horace Andy;Liz Fraser", ArtistField("Massive Attack", featured))
}

func TestArtistFieldEmptyPrimary(t *testing.T) {
	assert.Equal(t, "", ArtistField("", nil))
}
