package product

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_PriceDecoding(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "decimal string", body: `{"id":1,"price":"19.99"}`, want: "19.99"},
		{name: "json number", body: `{"id":1,"price":5.5}`, want: "5.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Product
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))
			assert.True(t, p.Price.Equal(decimal.RequireFromString(tt.want)), "got %s", p.Price)
		})
	}
}

func TestProduct_InStock(t *testing.T) {
	p := Product{Stock: 2, IsAvailable: true}
	assert.True(t, p.InStock(2))
	assert.False(t, p.InStock(3))

	p.IsAvailable = false
	assert.False(t, p.InStock(1))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$12.50", FormatPrice(decimal.RequireFromString("12.5")))
	assert.Equal(t, "$0.00", FormatPrice(decimal.Zero))
}
