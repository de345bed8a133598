// Package svcspec compiles declarative service specifications into the
// artifacts and control actions needed to run a process under daemontools.
//
// A specification is validated once and then turned into a Bundle: the exact
// text of the run script, the supervision symlink, the down marker, guarded
// svc commands and sudo grants. Nothing is executed; a configuration
// management engine applies the bundle:
//
//	bundle, err := svcspec.Compile("web", svcspec.RawSpec{
//	    Command: "/usr/bin/httpd -f",
//	    User:    "www",
//	    Ensure:  "running",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	run, _ := bundle.File("/var/lib/service/web/run")
//	fmt.Print(run.Content)
//
// # Pipeline
//
// Compile is a pipeline of pure functions that can also be called on their own:
//
//   - Validate checks a RawSpec and applies defaults
//   - RenderRun produces the run script
//   - PlanLifecycle maps ensure onto svc commands
//   - PlanSupervision maps ensure onto the staging directory, symlink and down file
//   - PlanGrants maps sudo_control onto grant descriptors
//
// Identical input always yields byte-identical output, so the engine can
// compare contents to decide whether anything changed.
//
// # Batches and groups
//
// The Compiler compiles many services concurrently and keeps going when one
// fails. ServiceGroup and GenerateWorkerNames expand a command template into
// numbered workers. LoadFile reads services and groups from YAML or TOML.
package svcspec
