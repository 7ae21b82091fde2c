package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dodam-health/glucoquest/internal/domain"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(4)

	_, ok := c.Get(ctx, 1)
	assert.False(t, ok)

	c.Set(ctx, 1, &domain.Principal{SubjectID: 1, Age: 9})
	p, ok := c.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, 9, p.Age)
}

func TestMemoryEvictsOldestWhenFull(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(2)

	c.Set(ctx, 1, &domain.Principal{SubjectID: 1})
	c.Set(ctx, 2, &domain.Principal{SubjectID: 2})
	c.Set(ctx, 3, &domain.Principal{SubjectID: 3})

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(ctx, 1)
	assert.False(t, ok, "the oldest entry is evicted first")
	_, ok = c.Get(ctx, 3)
	assert.True(t, ok)
}

func TestMemoryUpdateDoesNotEvict(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(2)

	c.Set(ctx, 1, &domain.Principal{SubjectID: 1, Age: 8})
	c.Set(ctx, 2, &domain.Principal{SubjectID: 2})
	c.Set(ctx, 1, &domain.Principal{SubjectID: 1, Age: 9})

	assert.Equal(t, 2, c.Len())
	p, ok := c.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, 9, p.Age)
}

func TestMemoryDefaultBound(t *testing.T) {
	c := NewMemory(0)
	assert.NotNil(t, c)
	c.Set(context.Background(), 1, &domain.Principal{SubjectID: 1})
	assert.Equal(t, 1, c.Len())
}
