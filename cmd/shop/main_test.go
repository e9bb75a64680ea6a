package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/electronic-shop/internal/core/domain"
)

func TestParseItems(t *testing.T) {
	items, err := parseItems("P1:2, P2 : 1,,")
	require.NoError(t, err)
	assert.Equal(t, []domain.LineItem{
		{ProductID: "P1", Quantity: 2},
		{ProductID: "P2", Quantity: 1},
	}, items)

	_, err = parseItems("P1")
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = parseItems("P1:two")
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	items, err = parseItems("")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"camera", "4k"}, splitList(" camera , ,4k"))
	assert.Nil(t, splitList(""))
}
