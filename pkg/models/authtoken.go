package models

// ExternalPrincipal is the identity resolved by an external authentication
// realm. When an auth token carries one, its attributes are folded into the
// request alongside the token's own claims.
type ExternalPrincipal struct {
	Name       string              `json:"name"`
	Attributes map[string][]string `json:"attributes"`
}

// AuthToken is the post-authentication attribute bag handed to the request
// processors. Claims hold scalar (string) or array ([]string) values.
type AuthToken struct {
	UID       string                 `json:"uid"`
	AuthMgrID string                 `json:"auth_mgr_id"`
	Claims    map[string]interface{} `json:"claims"`
	Principal *ExternalPrincipal     `json:"principal,omitempty"`
	Groups    []string               `json:"groups,omitempty"`
}

// IsMemberOf reports group membership for the authenticated identity.
func (t *AuthToken) IsMemberOf(group string) bool {
	for _, g := range t.Groups {
		if g == group {
			return true
		}
	}
	return false
}
