package tagging

import (
	"testing"

	"market/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: []string{}},
		{name: "stop words and short words", text: "The cat and a dog", want: []string{"cat", "dog"}},
		{name: "dedupe and lowercase", text: "Pizza pizza PIZZA oven", want: []string{"oven", "pizza"}},
		{name: "punctuation", text: "fresh-baked bread, (organic)!", want: []string{"baked", "bread", "fresh", "organic"}},
		{name: "unicode", text: "café crème brûlée", want: []string{"brûlée", "café", "crème"}},
		{name: "only noise", text: "it is to be or not", want: []string{"not"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, Extract(tt.text))
		})
	}
}

func TestForItem(t *testing.T) {
	desc := "Wood fired pizza with basil"
	item := &entity.Item{
		Name:        "Margherita Pizza",
		Description: &desc,
		Tags:        []string{"Vegetarian"},
	}

	tags := ForItem(item, "Italian Food", "Spicy")

	assert.Equal(t, []string{"basil", "fired", "italian food", "margherita", "pizza", "spicy", "vegetarian", "wood"}, tags)
}

func TestForBusiness(t *testing.T) {
	business := &entity.Business{Name: "Joe's Coffee House"}

	assert.Equal(t, []string{"coffee", "house", "joe", "roastery"}, ForBusiness(business, "roastery"))
}

func TestMatchesAny(t *testing.T) {
	tags := []string{"coffee", "espresso"}

	assert.True(t, MatchesAny(tags, []string{"tea", "Espresso"}))
	assert.False(t, MatchesAny(tags, []string{"tea"}))
	assert.False(t, MatchesAny(tags, nil))
}

func TestPopular(t *testing.T) {
	sets := [][]string{
		{"pizza", "cheese"},
		{"pizza", "salad"},
		{"cheese", "pizza", "wine"},
	}

	got := Popular(sets, 2)

	assert.Equal(t, []TagCount{{Tag: "pizza", Count: 3}, {Tag: "cheese", Count: 2}}, got)
	assert.Len(t, Popular(sets, 0), 4)
	assert.Empty(t, Popular(nil, 5))
}
