package intake

// Builder provides a fluent API for constructing policies
type Builder struct {
	policy Policy
}

// NewBuilder creates a builder starting from DefaultPolicy
func NewBuilder() *Builder {
	return &Builder{policy: DefaultPolicy()}
}

// Empty creates a builder with a 10MB limit and no type restriction
func Empty() *Builder {
	return &Builder{policy: Policy{MaxSize: 10 * MB}}
}

// From creates a builder seeded with a copy of an existing policy
func From(p Policy) *Builder {
	accepted := make([]string, len(p.Accepted))
	copy(accepted, p.Accepted)
	return &Builder{policy: Policy{MaxSize: p.MaxSize, Accepted: accepted}}
}

// MaxSize sets the largest accepted size
func (b *Builder) MaxSize(size int64) *Builder {
	b.policy.MaxSize = size
	return b
}

// Accept appends specifiers (MIME types or dot-prefixed extensions)
func (b *Builder) Accept(specifiers ...string) *Builder {
	b.policy.Accepted = append(b.policy.Accepted, specifiers...)
	return b
}

// AcceptList appends a comma-separated specifier list
func (b *Builder) AcceptList(list string) *Builder {
	return b.Accept(ParseSpecifiers(list)...)
}

// Only replaces the specifier list
func (b *Builder) Only(specifiers ...string) *Builder {
	b.policy.Accepted = append([]string(nil), specifiers...)
	return b
}

// AcceptAny removes the type restriction
func (b *Builder) AcceptAny() *Builder {
	b.policy.Accepted = nil
	return b
}

// Build returns the policy
func (b *Builder) Build() Policy {
	return b.policy
}

// Gate returns a Validator for the built policy
func (b *Builder) Gate() *Gate {
	return New(b.policy)
}
