package settlement

// Done exposes the runner's completion channel to external tests.
func (r *Runner) Done() <-chan struct{} { return r.done }
