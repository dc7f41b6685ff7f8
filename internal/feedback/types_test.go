package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoriesOrder(t *testing.T) {
	// Tie-breaking depends on this exact order.
	assert.Equal(t, []Category{
		CategoryBug,
		CategoryFeature,
		CategoryPraise,
		CategoryComplaint,
		CategorySpam,
	}, Categories())
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories() {
		assert.True(t, c.Valid(), string(c))
	}
	assert.True(t, CategoryUncertain.Valid())
	assert.False(t, Category("Nonsense").Valid())
	assert.False(t, Category("").Valid())
}

func TestCategoryGatesAreCaseInsensitive(t *testing.T) {
	assert.True(t, Category("bug").IsBug())
	assert.True(t, Category("BUG").IsBug())
	assert.True(t, CategoryBug.IsBug())
	assert.False(t, CategoryFeature.IsBug())

	assert.True(t, Category("feature request").IsFeature())
	assert.True(t, CategoryFeature.IsFeature())
	assert.False(t, CategoryBug.IsFeature())
}

func TestTicketID(t *testing.T) {
	assert.Equal(t, "TICKET-APP-001", TicketID("APP-001"))
	assert.Equal(t, "TICKET-", TicketID(""))
}
