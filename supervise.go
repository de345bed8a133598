package svcspec

// Supervision is the directory, symlink and down marker state implied by a
// service's ensure value
type Supervision struct {
	Directory Directory
	Symlink   Symlink
	// Down is nil when the service is absent
	Down *Marker
}

// PlanSupervision maps ensure onto the staging directory, the active symlink
// and the down marker. The down marker exists only while a service is
// deliberately stopped and is removed in every other present state.
func PlanSupervision(spec *ServiceSpec, layout Layout) Supervision {
	staging := layout.StagingPath(spec.Name)
	active := layout.ActivePath(spec.Name)

	if spec.Ensure == EnsureAbsent {
		return Supervision{
			Directory: Directory{Path: staging, State: StateAbsent},
			Symlink:   Symlink{Path: active, State: StateAbsent},
		}
	}

	down := Marker{Path: layout.DownPath(spec.Name), State: StateAbsent}
	if spec.Ensure == EnsureStopped {
		down.State = StatePresent
	}

	return Supervision{
		Directory: Directory{Path: staging, State: StatePresent, Mode: DirMode},
		Symlink:   Symlink{Path: active, Target: staging, State: StatePresent},
		Down:      &down,
	}
}
