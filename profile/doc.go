// Package profile provides optional runtime profiling for the sigil
// interpreter.
//
// # Overview
//
// This package integrates [github.com/pkg/profile] behind the "pprof" build
// tag. When built without the tag, [Config.Start] always returns a no-op
// stopper and [Modes] reports no modes.
//
// # Available Profiling Modes
//
//   - allocs:    Memory allocation profiling (all allocations)
//   - block:     Block (synchronization) profiling
//   - clock:     Wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: Goroutine profiling
//   - heap:      Heap memory profiling (live allocations)
//   - mem:       General memory profiling
//   - mutex:     Mutex contention profiling
//   - thread:    Thread creation profiling
//   - trace:     Execution trace profiling
//
// # Usage
//
//	cfg := profile.Config(func() (string, string, bool) { return "", "", false })
//	cfg = profile.WithMode("cpu")(cfg)
//	cfg = profile.WithPath("/tmp/sigil")(cfg)
//	defer cfg.Start().Stop()
//
// A long-running script is a good candidate for the "cpu" and "clock"
// modes:
//
//	go build -tags pprof -o sigil .
//	./sigil --pprof-mode cpu loop.sig
//	go tool pprof ./sigil ~/.cache/sigil/pprof/cpu.pprof
//
// When built with the tag, this package also imports [net/http/pprof], which
// registers handlers at /debug/pprof/ on [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
