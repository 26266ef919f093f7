package domain_test

import (
	"testing"

	"github.com/nikolayk812/cartstore-demo/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestCart_Upsert(t *testing.T) {
	cart := domain.Cart{Items: []domain.Product{{ID: 1, Amount: 1}, {ID: 2, Amount: 2}}}

	next := cart.Upsert(domain.Product{ID: 1, Amount: 5})
	assert.Equal(t, []domain.Product{{ID: 2, Amount: 2}, {ID: 1, Amount: 5}}, next.Items)

	next = next.Upsert(domain.Product{ID: 3, Amount: 1})
	assert.Equal(t, []domain.Product{{ID: 2, Amount: 2}, {ID: 1, Amount: 5}, {ID: 3, Amount: 1}}, next.Items)

	// receiver untouched
	assert.Equal(t, []domain.Product{{ID: 1, Amount: 1}, {ID: 2, Amount: 2}}, cart.Items)
}

func TestCart_Remove(t *testing.T) {
	cart := domain.Cart{Items: []domain.Product{{ID: 1, Amount: 1}, {ID: 2, Amount: 2}}}

	assert.Equal(t, []domain.Product{{ID: 2, Amount: 2}}, cart.Remove(1).Items)
	assert.Equal(t, cart.Items, cart.Remove(99).Items)
	assert.Len(t, cart.Items, 2)
}

func TestCart_Find(t *testing.T) {
	cart := domain.Cart{Items: []domain.Product{{ID: 7, Title: "Tênis", Amount: 3}}}

	p, ok := cart.Find(7)
	require.True(t, ok)
	assert.Equal(t, "Tênis", p.Title)

	_, ok = cart.Find(8)
	assert.False(t, ok)
}

func TestCart_Totals(t *testing.T) {
	cart := domain.Cart{Items: []domain.Product{
		{ID: 1, Price: decimal.RequireFromString("179.90"), Amount: 2},
		{ID: 2, Price: decimal.RequireFromString("139.90"), Amount: 1},
	}}

	assert.True(t, decimal.RequireFromString("359.80").Equal(cart.Items[0].Subtotal()))

	total := cart.Total(currency.BRL)
	assert.True(t, decimal.RequireFromString("499.70").Equal(total.Amount), "total %s", total.Amount)
	assert.Equal(t, "BRL", total.Currency.String())
	assert.Equal(t, "BRL 499.70", total.String())

	assert.Equal(t, 2, cart.Size())
	assert.Equal(t, map[int64]int{1: 2, 2: 1}, cart.Amounts())
}

func TestCart_Validate(t *testing.T) {
	tests := []struct {
		name      string
		items     []domain.Product
		wantError string
	}{
		{
			name:  "empty: ok",
			items: nil,
		},
		{
			name:  "unique positive: ok",
			items: []domain.Product{{ID: 1, Amount: 1}, {ID: 2, Amount: 9}},
		},
		{
			name:      "duplicated id: error",
			items:     []domain.Product{{ID: 1, Amount: 1}, {ID: 1, Amount: 2}},
			wantError: "product[1] is duplicated",
		},
		{
			name:      "non-positive amount: error",
			items:     []domain.Product{{ID: 4, Amount: 0}},
			wantError: "product[4] amount 0 is not positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.Cart{Items: tt.items}.Validate()
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
		})
	}
}
