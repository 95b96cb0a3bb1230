package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRunID(t *testing.T) {
	g := New()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := g.GenerateRunID()
		require.True(t, strings.HasPrefix(id, "run_"), id)
		assert.Len(t, id, len("run_")+21)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestGenerateRecordID(t *testing.T) {
	id := New().GenerateRecordID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}
