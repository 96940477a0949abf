package models

// Visibility steuert, ob NotInterested-Scholars im Graph erscheinen.
//
// VisibilityDefault blendet sie aus, zählt ihre Beziehungen aber weiterhin bei
// der Konnektivität mit. VisibilityStrictHidden blendet sie aus und ignoriert sie
// auch beim Zählen. VisibilityShowAll zeigt sie mit der Gruppe "not-interested".
type Visibility int

const (
	VisibilityDefault Visibility = iota
	VisibilityShowAll
	VisibilityStrictHidden
)

// VisibilityFromHideFlag übersetzt das hideNotInterested-Flag der API.
func VisibilityFromHideFlag(hide bool) Visibility {
	if hide {
		return VisibilityStrictHidden
	}
	return VisibilityShowAll
}

// HidesNotInterested ist false nur für VisibilityShowAll.
func (v Visibility) HidesNotInterested() bool {
	return v != VisibilityShowAll
}

// Strict meldet, ob ausgeblendete Scholars auch aus Zählungen herausfallen.
func (v Visibility) Strict() bool {
	return v == VisibilityStrictHidden
}

// Hides meldet, ob ein Scholar mit dieser Rolle ausgeblendet wird.
func (v Visibility) Hides(r Role) bool {
	return r == RoleNotInterested && v.HidesNotInterested()
}

func (v Visibility) String() string {
	switch v {
	case VisibilityShowAll:
		return "show-all"
	case VisibilityStrictHidden:
		return "strict-hidden"
	}
	return "default"
}
