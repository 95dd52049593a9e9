package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rand/homer-sub001/internal/models"
)

func TestFindRootModule_PrefersIsRootFlag(t *testing.T) {
	root := &models.Node{ID: 1, Name: "src/app", Metadata: map[string]any{"is_root": true}}
	other := &models.Node{ID: 2, Name: "."}
	got := FindRootModule([]*models.Node{other, root})
	assert.Equal(t, root, got)
}

func TestFindRootModule_FallsBackToDotName(t *testing.T) {
	dot := &models.Node{ID: 1, Name: "."}
	other := &models.Node{ID: 2, Name: "auth"}
	got := FindRootModule([]*models.Node{other, dot})
	assert.Equal(t, dot, got)
}

func TestFindRootModule_FallsBackToShortestName(t *testing.T) {
	long := &models.Node{ID: 1, Name: "auth/internal"}
	shortest := &models.Node{ID: 2, Name: "auth"}
	got := FindRootModule([]*models.Node{long, shortest})
	assert.Equal(t, shortest, got)
}

func TestFindRootModule_EmptyReturnsNil(t *testing.T) {
	assert.Nil(t, FindRootModule(nil))
}
