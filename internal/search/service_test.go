package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/verdanthq/verdant/internal/models"
)

func TestOrderByIDs(t *testing.T) {
	posts := []models.Post{
		{ID: "c"}, {ID: "a"}, {ID: "b"},
	}

	ordered := OrderByIDs(posts, []string{"a", "b", "c"}, func(p models.Post) string { return p.ID })

	assert.Equal(t, []string{"a", "b", "c"}, postIDsOf(ordered))
}

func TestOrderByIDsDropsFilteredRows(t *testing.T) {
	// "b" was ranked by the index but filtered out during hydration
	posts := []models.Post{
		{ID: "c"}, {ID: "a"},
	}

	ordered := OrderByIDs(posts, []string{"a", "b", "c"}, func(p models.Post) string { return p.ID })

	assert.Equal(t, []string{"a", "c"}, postIDsOf(ordered))
}

func TestOrderByIDsEmpty(t *testing.T) {
	ordered := OrderByIDs(nil, []string{"a"}, func(p models.Post) string { return p.ID })
	assert.Empty(t, ordered)

	ordered = OrderByIDs([]models.Post{{ID: "a"}}, nil, func(p models.Post) string { return p.ID })
	assert.Empty(t, ordered)
}

func TestActiveMode(t *testing.T) {
	svc := NewService(nil, nil)
	assert.Equal(t, ModeLike, svc.ActiveMode())
}

func TestMatchQueryShape(t *testing.T) {
	q := matchQuery("bonsai", 20, 40,
		field{"name", 2.0},
		field{"description", 1.0},
	)

	assert.Equal(t, 40, q["from"])
	assert.Equal(t, 20, q["size"])

	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
	should := boolQuery["should"].([]map[string]interface{})
	assert.Len(t, should, 2)
	assert.Equal(t, 1, boolQuery["minimum_should_match"])
}

func postIDsOf(posts []models.Post) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}
