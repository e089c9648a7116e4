package mapper

// Mutation changes an Output before it is sent. Returning an error aborts
// the request.
type Mutation interface {
	Name() string
	Apply(out *Output) error
}

// MutationFunc adapts a function to the Mutation interface.
type MutationFunc struct {
	Label string
	Fn    func(out *Output) error
}

// Name returns the mutation label.
func (m MutationFunc) Name() string { return m.Label }

// Apply calls the wrapped function.
func (m MutationFunc) Apply(out *Output) error { return m.Fn(out) }

// Chain is an ordered, immutable list of mutations.
type Chain struct {
	mutations []Mutation
}

// NewChain creates a chain that applies mutations in the given order.
func NewChain(mutations ...Mutation) *Chain {
	return &Chain{mutations: append([]Mutation(nil), mutations...)}
}

// Len returns the number of mutations in the chain.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.mutations)
}

// Names returns the mutation names in order.
func (c *Chain) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.mutations))
	for i, m := range c.mutations {
		names[i] = m.Name()
	}
	return names
}

// Apply runs every mutation against out. It stops at the first failure and
// returns it as a *MutationError.
func (c *Chain) Apply(out *Output) error {
	if c == nil {
		return nil
	}
	for _, m := range c.mutations {
		if err := m.Apply(out); err != nil {
			return &MutationError{Name: m.Name(), Err: err}
		}
	}
	return nil
}
