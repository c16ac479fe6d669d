package inventory

import (
	"testing"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souq_back_end/internal/models"
)

func mustUUID(t *testing.T) gocql.UUID {
	t.Helper()
	id, err := gocql.RandomUUID()
	require.NoError(t, err)
	return id
}

func TestFromOrderItems(t *testing.T) {
	orderID := mustUUID(t)
	p1 := mustUUID(t)
	p2 := mustUUID(t)

	adj, err := FromOrderItems(orderID, "user-1", []models.OrderItem{
		{ProductID: p1.String(), Quantity: 2},
		{ProductID: p2.String(), Quantity: 1},
	})
	require.NoError(t, err)

	require.Len(t, adj.Deltas, 2)
	assert.Equal(t, -2, adj.Deltas[0].QuantityDelta)
	assert.Equal(t, 2, adj.Deltas[0].SoldDelta)
	assert.Equal(t, -1, adj.Deltas[1].QuantityDelta)
	assert.Equal(t, 1, adj.Deltas[1].SoldDelta)
}

func TestFromOrderItemsRejectsBadProductID(t *testing.T) {
	_, err := FromOrderItems(mustUUID(t), "user-1", []models.OrderItem{
		{ProductID: "pas-un-uuid", Quantity: 1},
	})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	pid := mustUUID(t)

	assert.ErrorIs(t, BulkAdjustment{}.Validate(), ErrEmptyAdjustment)

	bad := BulkAdjustment{Deltas: []Delta{{ProductID: gocql.UUID{}, QuantityDelta: -1, SoldDelta: 1}}}
	assert.ErrorIs(t, bad.Validate(), ErrUnknownProduct)

	negSold := BulkAdjustment{Deltas: []Delta{{ProductID: pid, QuantityDelta: -1, SoldDelta: -1}}}
	assert.ErrorIs(t, negSold.Validate(), ErrNegativeSold)

	ok := BulkAdjustment{Deltas: []Delta{{ProductID: pid, QuantityDelta: -1, SoldDelta: 1}}}
	assert.NoError(t, ok.Validate())
}

func TestPlan(t *testing.T) {
	pid := mustUUID(t)
	levels := map[gocql.UUID]Levels{
		pid: {Stock: 5, Sold: 10, Name: "clavier"},
	}

	adj := BulkAdjustment{Deltas: []Delta{{ProductID: pid, QuantityDelta: -2, SoldDelta: 2}}}
	updates, err := Plan(levels, adj)
	require.NoError(t, err)

	require.Len(t, updates, 1)
	assert.Equal(t, 3, updates[0].NewStock)
	assert.Equal(t, 12, updates[0].NewSold)
	assert.Equal(t, 5, updates[0].PrevStock)
}

func TestPlanRejectsNegativeStock(t *testing.T) {
	pid := mustUUID(t)
	levels := map[gocql.UUID]Levels{
		pid: {Stock: 1, Sold: 0, Name: "souris"},
	}

	adj := BulkAdjustment{Deltas: []Delta{{ProductID: pid, QuantityDelta: -2, SoldDelta: 2}}}
	_, err := Plan(levels, adj)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestPlanRejectsUnknownProduct(t *testing.T) {
	adj := BulkAdjustment{Deltas: []Delta{{ProductID: mustUUID(t), QuantityDelta: -1, SoldDelta: 1}}}
	_, err := Plan(map[gocql.UUID]Levels{}, adj)
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestPlanAllOrNothing(t *testing.T) {
	p1 := mustUUID(t)
	p2 := mustUUID(t)
	levels := map[gocql.UUID]Levels{
		p1: {Stock: 10, Sold: 0, Name: "clavier"},
		p2: {Stock: 0, Sold: 0, Name: "souris"},
	}

	adj := BulkAdjustment{Deltas: []Delta{
		{ProductID: p1, QuantityDelta: -1, SoldDelta: 1},
		{ProductID: p2, QuantityDelta: -1, SoldDelta: 1},
	}}

	// le second delta est invalide : aucune écriture ne doit être planifiée
	updates, err := Plan(levels, adj)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Nil(t, updates)
}
