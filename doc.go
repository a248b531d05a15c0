// Package tsruntime implements the core of a minimal managed-object runtime
// for compiled TypeScript-like programs produced by an ahead-of-time front
// end: a segregated-fit garbage-collected heap, a uniform object model with
// single-inheritance classes and interfaces, a cooperative single-threaded
// event loop with timers, a Promise/async-await engine, and structured
// exception propagation.
//
// # Architecture
//
// Five subsystems are wired together by [Runtime]:
//   - the [Heap] (size-classed [Cluster] allocator, a hashed large-object
//     table, reference counting, and a mark-and-sweep [Collector]);
//   - the object model ([Vtable], [VtableEnv], [Object], interfaces, boxed
//     primitives, [String], closures, and tagged [Union] values);
//   - the [Module] container, the GC root for a compilation unit;
//   - the [TimerService], driven by an embedder-supplied [Backend]; and
//   - the [Promise] engine and [TryBlock] exception propagation, which
//     cooperate at `await` boundaries.
//
// # Execution model
//
// The runtime does not own an event loop; it is driven by whatever
// [Backend] the embedder supplies (see [Backend]). [LoopBackend] is the
// reference implementation shipped with this module: a single-goroutine,
// [time.Sleep]-driven loop with no file-descriptor polling of its own,
// since the Backend contract exposes only timer scheduling and task
// posting.
//
// # Usage
//
//	rt, err := tsruntime.NewRuntime(tsruntime.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	mod, err := rt.LoadBuiltin("main")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mod.Close()
//	if err := rt.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Error types
//
//   - [UserError] wraps a thrown `Error` class instance routed through
//     [TryBlock] propagation.
//   - [AllocationError] is returned when the heap cannot satisfy a request.
//   - [DispatchError] reports a dispatch precondition violation (nil
//     object, member-index out of range, field/method slot mismatch).
//   - [LoaderError] reports a module-loader failure (bad magic, missing
//     symbol, unsupported package kind).
//
// All error types implement [error], [errors.Unwrap], and are matchable via
// [errors.Is] / [errors.As].
package tsruntime
