package model

// Permission names checked by the API layer. Granting and revoking them is
// the identity provider's concern; this repository only reads them.
const (
	PermViewAnyMedia   = "media:view_any"
	PermUploadMedia    = "media:upload"
	PermManageMedia    = "media:manage"
	PermManageAnyMedia = "media:manage_any"

	PermManageCourse    = "course:manage"
	PermManageAnyCourse = "course:manage_any"
)

// HasPermission reports whether the user holds at least one of the given
// permissions.
func (u *User) HasPermission(anyOf ...string) bool {
	for _, want := range anyOf {
		for _, have := range u.Permissions {
			if have == want {
				return true
			}
		}
	}
	return false
}
