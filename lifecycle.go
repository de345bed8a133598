package svcspec

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// Lifecycle states
const (
	LifecycleStateAbsent  = "absent"
	LifecycleStatePresent = "present"
	LifecycleStateRunning = "running"
	LifecycleStateStopped = "stopped"
)

// Lifecycle events
const (
	LifecycleEventRun    = "run"
	LifecycleEventStop   = "stop"
	LifecycleEventRemove = "remove"
)

// Command name prefixes, suffixed with ":<service>"
const (
	commandRestart = "daemontools/service/restart"
	commandRunning = "daemontools/service/running"
	commandStopped = "daemontools/service/stopped"
	commandAbsent  = "daemontools/service/absent"
)

// LifecyclePlan is the outcome of driving the lifecycle machine to a
// service's ensure state
type LifecyclePlan struct {
	// State is the state the machine settled in
	State string
	// Commands are the convergence actions, in the order they should run
	Commands []Command
}

// PlanLifecycle computes the guarded control actions that converge a service
// to its ensure state. The machine starts in the present state, since the
// artifacts exist by the time actions run, and fires at most one event.
// The restart is skipped while the down marker exists.
func PlanLifecycle(spec *ServiceSpec, layout Layout) (LifecyclePlan, error) {
	var commands []Command
	staging := ShellQuote(layout.StagingPath(spec.Name))

	restart := Command{
		Name:        commandName(commandRestart, spec.Name),
		Command:     svcCommand(layout, OpTerm, staging),
		Unless:      fmt.Sprintf("%s -e %s", layout.TestPath, ShellQuote(layout.DownPath(spec.Name))),
		RefreshOnly: true,
		Subscribe:   []string{layout.RunPath(spec.Name)},
	}

	machine := fsm.NewFSM(
		LifecycleStatePresent,
		fsm.Events{
			{Name: LifecycleEventRun, Src: []string{LifecycleStatePresent}, Dst: LifecycleStateRunning},
			{Name: LifecycleEventStop, Src: []string{LifecycleStatePresent}, Dst: LifecycleStateStopped},
			{Name: LifecycleEventRemove, Src: []string{LifecycleStatePresent}, Dst: LifecycleStateAbsent},
		},
		fsm.Callbacks{
			"enter_" + LifecycleStateRunning: func(_ context.Context, _ *fsm.Event) {
				commands = append(commands, restart, Command{
					Name:    commandName(commandRunning, spec.Name),
					Command: svcCommand(layout, OpUp, staging),
				})
			},
			"enter_" + LifecycleStateStopped: func(_ context.Context, _ *fsm.Event) {
				commands = append(commands, restart, Command{
					Name:    commandName(commandStopped, spec.Name),
					Command: svcCommand(layout, OpDown, staging),
				})
			},
			"enter_" + LifecycleStateAbsent: func(_ context.Context, _ *fsm.Event) {
				commands = append(commands, Command{
					Name:    commandName(commandAbsent, spec.Name),
					Command: fmt.Sprintf("%s %s", layout.PurgePath, ShellQuote(spec.Name)),
					OnlyIf:  fmt.Sprintf("%s -e %s", layout.TestPath, staging),
				})
			},
		},
	)

	if event := lifecycleEvent(spec.Ensure); event != "" {
		if err := machine.Event(context.Background(), event); err != nil {
			return LifecyclePlan{}, fmt.Errorf("lifecycle of %q: %w", spec.Name, err)
		}
	}

	return LifecyclePlan{State: machine.Current(), Commands: commands}, nil
}

// lifecycleEvent maps ensure onto the event driving the machine there
func lifecycleEvent(e Ensure) string {
	switch e {
	case EnsureRunning:
		return LifecycleEventRun
	case EnsureStopped:
		return LifecycleEventStop
	case EnsureAbsent:
		return LifecycleEventRemove
	default:
		return ""
	}
}

func commandName(prefix, service string) string {
	return prefix + ":" + service
}

func svcCommand(layout Layout, op Operation, quotedDir string) string {
	return fmt.Sprintf("%s %s %s", layout.SvcPath, op.Flag(), quotedDir)
}
