package confirmation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grouporder/models"
)

func TestRenderEmpty(t *testing.T) {
	for _, items := range [][]models.OrderedItem{nil, {}} {
		r := Render(items)
		assert.True(t, r.Empty)
		assert.Equal(t, NoDetailsMessage, r.Message)
		assert.Nil(t, r.Lines)
		assert.Empty(t, r.Total)
		assert.Equal(t, "No order details available.\n", r.Text("₪"))
	}
}

func TestRenderSingleLine(t *testing.T) {
	r := Render([]models.OrderedItem{{Name: "Bread", Quantity: 3, Price: 10}})
	require.False(t, r.Empty)
	require.Len(t, r.Lines, 1)
	assert.Equal(t, "30", r.Lines[0].Subtotal.String())
	assert.Equal(t, "30.00", r.Total)
	assert.Equal(t, "Bread - 3 x 10₪ = 30₪\nTotal: 30.00₪\n", r.Text("₪"))
}

func TestRenderRoundsTotal(t *testing.T) {
	r := Render([]models.OrderedItem{
		{Name: "Milk", Quantity: 3, Price: 6.9},
		{Name: "Cheese", Quantity: 2, Price: 31.5},
		{Name: "Jam", Quantity: 1, Price: 0.005},
	})
	assert.Equal(t, "20.7", r.Lines[0].Subtotal.String())
	assert.Equal(t, "63", r.Lines[1].Subtotal.String())
	// 83.705 rounds half up
	assert.Equal(t, "83.71", r.Total)
}

func TestRenderKeepsZeroQuantityLines(t *testing.T) {
	r := Render([]models.OrderedItem{{Name: "Bread", Quantity: 0, Price: 10}})
	require.Len(t, r.Lines, 1)
	assert.Equal(t, "0.00", r.Total)
}
