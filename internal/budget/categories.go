package budget

import "strings"

const DEFAULT_CATEGORY = "Geral"

type Category struct {
	Label string
	Icon  string
}

// defaultCategories is what clients offer in their pickers. Expenses may carry
// any other label too.
var defaultCategories = []Category{
	{Label: "Geral", Icon: "category"},
	{Label: "Alimentação", Icon: "restaurant"},
	{Label: "Moradia", Icon: "home"},
	{Label: "Transporte", Icon: "directions-car"},
	{Label: "Saúde", Icon: "local-hospital"},
	{Label: "Educação", Icon: "school"},
	{Label: "Serviços", Icon: "build"},
	{Label: "Tecnologia", Icon: "devices"},
	{Label: "Vestuário", Icon: "checkroom"},
	{Label: "Lazer", Icon: "sports-esports"},
	{Label: "Pets", Icon: "pets"},
	{Label: "Viagem", Icon: "flight"},
	{Label: "Impostos", Icon: "account-balance"},
	{Label: "Doações", Icon: "volunteer-activism"},
	{Label: "Outros", Icon: "more-horiz"},
}

func Categories() []Category {
	result := make([]Category, len(defaultCategories))
	copy(result, defaultCategories)
	return result
}

// canonicalCategory maps a label onto a known one ignoring case, or returns
// the trimmed label and false.
func canonicalCategory(label string) (Category, bool) {
	label = strings.TrimSpace(label)
	for _, c := range defaultCategories {
		if strings.EqualFold(c.Label, label) {
			return c, true
		}
	}
	return Category{Label: label}, false
}

func normalizeCategory(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return DEFAULT_CATEGORY
	}
	if c, ok := canonicalCategory(label); ok {
		return c.Label
	}
	return label
}
