package harness

// Result is the outcome of running a scenario.
type Result struct {
	// Pass indicates overall success. True when every assertion held.
	Pass bool `json:"pass"`

	// Wat is the textual rendering of the compiled module.
	Wat string `json:"wat"`

	// Wasm is the binary encoding of the compiled module.
	Wasm []byte `json:"-"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError records an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
