package domain

type Category string

const (
	CategoryShoes      Category = "shoes"
	CategoryShirts     Category = "shirts"
	CategoryPants      Category = "pants"
	CategorySportswear Category = "sportswear"
	CategoryJackets    Category = "jackets"
)

var apparelSizes = []string{"S", "M", "L", "XL", "XXL", "XXXL"}

var categorySizes = map[Category][]string{
	CategoryShoes:      {"38", "39", "40", "41", "42", "43", "44", "45"},
	CategoryShirts:     apparelSizes,
	CategoryPants:      apparelSizes,
	CategorySportswear: apparelSizes,
	CategoryJackets:    apparelSizes,
}

// Categories returns every known category in display order.
func Categories() []Category {
	return []Category{CategoryShoes, CategoryShirts, CategoryPants, CategorySportswear, CategoryJackets}
}

func (c Category) IsValid() bool {
	_, ok := categorySizes[c]
	return ok
}

// SizeLabels returns the ordered size set of the category, nil for unknown categories.
func (c Category) SizeLabels() []string {
	return append([]string(nil), categorySizes[c]...)
}

// HasSize reports whether size belongs to the category's size set.
func (c Category) HasSize(size string) bool {
	for _, s := range categorySizes[c] {
		if s == size {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}
