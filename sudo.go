package svcspec

// PlanGrants returns the sudo grants implied by a service's sudo_control.
// With SudoBoth the alternate backend comes first.
func PlanGrants(spec *ServiceSpec, layout Layout) []Grant {
	switch spec.SudoControl {
	case SudoPrimary:
		return []Grant{grantFor(spec, layout, layout.PrimaryBackend)}
	case SudoAlternate:
		return []Grant{grantFor(spec, layout, layout.AlternateBackend)}
	case SudoBoth:
		return []Grant{
			grantFor(spec, layout, layout.AlternateBackend),
			grantFor(spec, layout, layout.PrimaryBackend),
		}
	default:
		return nil
	}
}

func grantFor(spec *ServiceSpec, layout Layout, backend GrantBackend) Grant {
	service := spec.Name
	if backend.Scope == ScopePath {
		service = layout.ActivePath(spec.Name)
	}

	return Grant{
		Backend: backend.Name,
		Key:     spec.SudoUser + "/" + spec.Name,
		User:    spec.SudoUser,
		Service: service,
		Passwd:  false,
	}
}
