package client

// Navigation filter: computes which menu entries a user may see from
// the intersection of the user's roles and each item's allow list.

// NavItem is a single navigation entry.
type NavItem struct {
	Label string
	Path  string
	Icon  string
	// AllowedRoles lists the wire role names that may see the item.
	// An item is visible only when the user holds at least one of
	// them, so an empty list matches no one.
	AllowedRoles []string
}

// VisibleItems filters items to those the user may see, preserving
// the input order. A nil user sees nothing.
func VisibleItems(items []NavItem, user *AuthenticatedUser) []NavItem {
	if user == nil {
		return []NavItem{}
	}

	out := make([]NavItem, 0, len(items))
	for _, item := range items {
		for _, role := range item.AllowedRoles {
			if user.HasRole(role) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
