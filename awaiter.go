package tsruntime

// AwaiterFrame is the compiled representation of one `async function`
// activation: an explicit finite-state machine rather than a
// computed-goto, per DESIGN NOTES §9. Compiled code emits one Step
// implementation per async function, switching on Label to resume at the
// point after the last `await`.
type AwaiterFrame struct {
	Label int
	Locals []any

	promise *Promise
	backend Backend

	// Step advances the frame one segment: it runs until the next `await`
	// (or the function returns/throws), returning the promise awaited or
	// nil if the function completed. resumeVal carries the resolved value
	// of the promise awaited last Step call; resumeErr carries a thrown
	// exception to resume with (for `await` inside a try block).
	Step func(f *AwaiterFrame, resumeVal any, resumeErr error) (awaited *Promise, done bool, result any, err error)
}

// NewAwaiterFrame constructs a frame for an async function body and
// immediately starts driving it, returning the [Promise] representing the
// function's eventual completion — the same promise a compiled `async
// function` call expression evaluates to.
func NewAwaiterFrame(backend Backend, step func(f *AwaiterFrame, resumeVal any, resumeErr error) (*Promise, bool, any, error)) *Promise {
	p, resolve, reject := NewPromise(backend)
	f := &AwaiterFrame{backend: backend, promise: p, Step: step}
	f.drive(nil, nil, resolve, reject)
	return p
}

// drive runs Step repeatedly, chaining through each awaited promise via
// Then, until the frame signals completion.
func (f *AwaiterFrame) drive(resumeVal any, resumeErr error, resolve, reject func(any)) {
	awaited, done, result, err := f.Step(f, resumeVal, resumeErr)
	if err != nil {
		reject(err)
		return
	}
	if done {
		resolve(result)
		return
	}
	if awaited == nil {
		// Step advanced without producing a new await point or a result;
		// compiled code never does this, but guard against an infinite
		// synchronous loop rather than spinning.
		reject(&DispatchError{Op: "await", Cause: ErrNilObject})
		return
	}
	awaited.Then(
		func(v any) (any, error) { f.drive(v, nil, resolve, reject); return nil, nil },
		func(r any) (any, error) { f.drive(nil, reasonToErr(r), resolve, reject); return nil, nil },
	)
}

func reasonToErr(reason any) error {
	if err, ok := reason.(error); ok {
		return err
	}
	if eo, ok := reason.(*ErrorObject); ok {
		return &UserError{Value: eo}
	}
	return &UserError{Value: &ErrorObject{Message: "non-error rejection reason"}}
}
