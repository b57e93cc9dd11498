package interp

// Environment is a scope's name-to-value mapping. One Environment exists
// per top-level pass and a fresh one per function call, keeping
// top-level and each function body's names independent.
type Environment struct {
	vars map[string]Value
}

// NewEnvironment creates an empty scope.
func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]Value)}
}

// Get looks up name, reporting whether it is bound.
func (e *Environment) Get(name string) (Value, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Set binds or rebinds name in this scope.
func (e *Environment) Set(name string, v Value) {
	e.vars[name] = v
}
