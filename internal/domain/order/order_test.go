package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ComputesSumFromItems(t *testing.T) {
	o, err := New(1, []LineItem{
		{ProductID: 1, Name: "a", Quantity: 2, PriceCents: 1500},
		{ProductID: 2, Name: "b", Quantity: 3, PriceCents: 100},
	})

	require.NoError(t, err)
	assert.Equal(t, StatusNotPaid, o.Status)
	assert.Equal(t, int64(3300), o.SumCents)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(1, nil)
	require.ErrorIs(t, err, ErrNoItems)

	_, err = New(1, []LineItem{{ProductID: 1, Quantity: 0, PriceCents: 100}})
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestReplaceItems_RecomputesSum(t *testing.T) {
	o, err := New(1, []LineItem{{ProductID: 1, Name: "a", Quantity: 1, PriceCents: 1000}})
	require.NoError(t, err)

	require.NoError(t, o.ReplaceItems([]LineItem{
		{ProductID: 2, Name: "b", Quantity: 4, PriceCents: 250},
	}))

	assert.Equal(t, int64(1000), o.SumCents)
	require.Len(t, o.Items, 1)
	assert.Equal(t, int64(2), o.Items[0].ProductID)
}

func TestReplaceItems_PaidOrderRejected(t *testing.T) {
	o, err := New(1, []LineItem{{ProductID: 1, Name: "a", Quantity: 1, PriceCents: 1000}})
	require.NoError(t, err)
	require.NoError(t, o.MarkPaid())

	err = o.ReplaceItems([]LineItem{{ProductID: 2, Name: "b", Quantity: 1, PriceCents: 500}})

	require.ErrorIs(t, err, ErrNotEditable)
}

func TestMarkPaid_IsOneWay(t *testing.T) {
	o, err := New(1, []LineItem{{ProductID: 1, Name: "a", Quantity: 1, PriceCents: 1000}})
	require.NoError(t, err)

	require.NoError(t, o.MarkPaid())
	assert.False(t, o.Editable())

	err = o.MarkPaid()
	require.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestAge(t *testing.T) {
	o, err := New(1, []LineItem{{ProductID: 1, Name: "a", Quantity: 1, PriceCents: 1000}})
	require.NoError(t, err)
	o.CreatedAt = time.Now().UTC().Add(-15 * time.Minute)

	assert.GreaterOrEqual(t, o.Age(time.Now().UTC()), 15*time.Minute)
}

func TestClone_IsDeep(t *testing.T) {
	o, err := New(1, []LineItem{{ProductID: 1, Name: "a", Quantity: 1, PriceCents: 1000}})
	require.NoError(t, err)

	clone := o.Clone()
	clone.Items[0].Quantity = 99

	assert.Equal(t, 1, o.Items[0].Quantity)
}
