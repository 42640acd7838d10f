package cameriere

import "strings"

// MenuFilter narrows a menu down. Zero value keeps everything.
type MenuFilter struct {
	Veg          bool
	Jain         bool
	ChefsSpecial bool
	// Query matches item names and descriptions, case insensitive.
	Query string
}

func (f MenuFilter) match(item MenuItem) bool {
	if f.Veg && !item.IsVeg {
		return false
	}
	if f.Jain && !item.IsJain {
		return false
	}
	if f.ChefsSpecial && !item.IsChefsSpecial {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(item.Name), q) ||
		strings.Contains(strings.ToLower(item.Description), q)
}

// FilterMenu returns the categories with at least one matching item, each
// holding only its matching items.
func FilterMenu(menu []Category, filter MenuFilter) []Category {
	out := make([]Category, 0, len(menu))
	for _, cat := range menu {
		var items []MenuItem
		for _, item := range cat.Items {
			if filter.match(item) {
				items = append(items, item)
			}
		}
		if len(items) > 0 {
			out = append(out, Category{ID: cat.ID, Name: cat.Name, Items: items})
		}
	}
	return out
}

func FindItem(menu []Category, itemID int64) (MenuItem, bool) {
	for _, cat := range menu {
		for _, item := range cat.Items {
			if item.ID == itemID {
				return item, true
			}
		}
	}
	return MenuItem{}, false
}
