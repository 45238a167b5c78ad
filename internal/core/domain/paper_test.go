package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkID(t *testing.T) {
	assert.Equal(t, "abc_p1_c0", ChunkID("abc", 1, 0))
	assert.Equal(t, "abc_p12_c3", ChunkID("abc", 12, 3))
}

func TestCollectionName(t *testing.T) {
	name := CollectionName("0123abcd")
	assert.Equal(t, "paper_0123abcd", name)

	id, ok := SessionFromCollection(name)
	assert.True(t, ok)
	assert.Equal(t, "0123abcd", id)

	_, ok = SessionFromCollection("notes_0123")
	assert.False(t, ok)

	_, ok = SessionFromCollection("paper_")
	assert.False(t, ok)
}

func TestPaper_FullText(t *testing.T) {
	p := &Paper{Pages: []string{"first", "", "third"}}

	assert.Equal(t, 3, p.PageCount())
	assert.Equal(t, "first\n\n\n\nthird", p.FullText())
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleAssistant.IsValid())
	assert.False(t, RoleSystem.IsValid())
	assert.False(t, Role("tool").IsValid())
}
