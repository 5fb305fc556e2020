package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", FormatAmount(dec("0")))
	assert.Equal(t, "270,000", FormatAmount(dec("270000")))
	assert.Equal(t, "1,234,568", FormatAmount(dec("1234567.5")))
	assert.Equal(t, "-5,000", FormatAmount(dec("-5000")))
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "2", FormatQuantity(dec("2")))
	assert.Equal(t, "2.7", FormatQuantity(dec("2.7")))
	assert.Equal(t, "0.7", FormatQuantity(dec("0.699678")))
	assert.Equal(t, "1,234.57", FormatQuantity(dec("1234.567")))
}
