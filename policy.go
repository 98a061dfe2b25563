package accounts

import "net/http"

// Capability is a named permission required to act on a resource type.
type Capability string

const (
	CapabilityView   Capability = "view"
	CapabilityAdd    Capability = "add"
	CapabilityChange Capability = "change"
	CapabilityDelete Capability = "delete"
)

// ResourceUsers is the resource type guarding profile operations.
const ResourceUsers = "users"

// Policy maps HTTP verbs to required capabilities and roles to
// capability grants. Both tables are fixed at construction; nothing is
// derived per request.
type Policy struct {
	verbs  map[string]Capability
	grants map[UserRole]map[string]map[Capability]bool
}

// NewPolicy builds the default policy: read verbs need "view", write
// verbs need "add"/"change"/"delete" on the target resource. HEAD and
// OPTIONS need nothing.
func NewPolicy() *Policy {
	p := &Policy{
		verbs: map[string]Capability{
			http.MethodGet:    CapabilityView,
			http.MethodPost:   CapabilityAdd,
			http.MethodPut:    CapabilityChange,
			http.MethodPatch:  CapabilityChange,
			http.MethodDelete: CapabilityDelete,
		},
		grants: map[UserRole]map[string]map[Capability]bool{},
	}

	p.grant(RoleUser, ResourceUsers, CapabilityView, CapabilityAdd, CapabilityChange)
	p.grant(RoleCompanyAdmin, ResourceUsers, CapabilityView, CapabilityAdd, CapabilityChange, CapabilityDelete)
	p.grant(RoleSuperAdmin, ResourceUsers, CapabilityView, CapabilityAdd, CapabilityChange, CapabilityDelete)

	return p
}

func (p *Policy) grant(role UserRole, resource string, caps ...Capability) {
	byResource, ok := p.grants[role]
	if !ok {
		byResource = map[string]map[Capability]bool{}
		p.grants[role] = byResource
	}

	set, ok := byResource[resource]
	if !ok {
		set = map[Capability]bool{}
		byResource[resource] = set
	}

	for _, c := range caps {
		set[c] = true
	}
}

// RequiredCapability returns the capability an HTTP verb demands. The
// second return is false when the verb needs no check (HEAD, OPTIONS).
func (p *Policy) RequiredCapability(method string) (Capability, bool) {
	c, ok := p.verbs[method]
	return c, ok
}

// Allows reports whether the role holds the capability on the resource.
func (p *Policy) Allows(role UserRole, resource string, capability Capability) bool {
	byResource, ok := p.grants[role]
	if !ok {
		return false
	}

	set, ok := byResource[resource]
	if !ok {
		return false
	}

	return set[capability]
}

// Authorize gates a request: it resolves the verb's capability and
// checks the principal's grants, returning ErrForbidden on a miss.
func (p *Policy) Authorize(user *User, method, resource string) error {
	capability, required := p.RequiredCapability(method)
	if !required {
		return nil
	}

	if user == nil || !p.Allows(user.Role, resource, capability) {
		return ErrForbidden
	}

	return nil
}
