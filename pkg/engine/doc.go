// Package engine interprets Rift programs over a shared Environment.
//
// # Overview
//
// The engine walks the AST produced by pkg/lang and gives each node its
// runtime meaning:
//
//  1. Program - Each child runs as an independent concurrent unit of work
//  2. Rift / Task - Register a named body; registration never executes it
//  3. Fuse - Execute a foreign-language snippet through its toolchain
//  4. Target - Set the translation target for the optimize path
//  5. Deploy - Compile the payload and fan out to the selected sinks
//  6. Let / Call / If / While - Variables, invocation, and control flow
//
// # Environment
//
// All statements share one Environment: variables, registered rifts in
// insertion order, registered tasks, the artifact cache, and the target
// language. A single RWMutex guards the scalar and map state; the artifact
// cache synchronizes itself. Racing writes to one name are last-write-wins.
//
// # Concurrency
//
// Only Program children run concurrently. The fan-out is fail-fast: the
// first child error cancels the rest and becomes the program's error.
// Side effects already applied to the Environment are not rolled back.
// Bodies invoked by If, While, and Call run sequentially in textual order.
//
// # Fuse Pipeline
//
// A fuse snippet is content-hashed (SHA-256 of the exact text). A cache
// hit is authoritative: resolution, installation, and execution are all
// skipped. On a miss the engine resolves imports through the adapter
// registry, executes through pkg/executor, and caches captured stdout
// under the hash.
//
// # Collaborators
//
// The interpreter reaches its collaborators through narrow interfaces
// (Resolver, Runner, Transformer, Deployer, Admission, Recorder) so tests
// can substitute scripted fakes:
//
//	interp := engine.New(engine.Config{
//	    Environment: env,
//	    Resolver:    resolver.New(resolver.NewDefaultRegistry()),
//	    Runner:      executor.NewExecutor(executor.Config{}),
//	    Transformer: transform.NewTemplateService(),
//	    Deployer:    deploy.NewOrchestrator(deploy.Config{}),
//	})
//	err := interp.Run(ctx, program)
//
// # Sessions
//
// Session wraps an Environment and an Interpreter with a stable identity
// for the REPL and the run/exec commands. It parses source, runs it with
// run-scoped telemetry, and survives statement failures: a failed Fuse,
// Call, or Deploy aborts that statement only.
package engine
