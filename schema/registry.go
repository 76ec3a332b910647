package schema

import "fmt"

// Registry maps logical table keys to their file names and canonical columns.
// It is immutable after construction; components receive it as a value at
// construction time rather than reading ambient global state, so tests can
// supply a fabricated schema.
type Registry struct {
	specs map[TableKey]TableSpec
	order []TableKey
}

// New builds a registry from an explicit spec map. Iteration order follows
// the order slice.
func New(order []TableKey, specs map[TableKey]TableSpec) *Registry {
	copied := make(map[TableKey]TableSpec, len(specs))
	for k, v := range specs {
		copied[k] = v
	}
	return &Registry{specs: copied, order: append([]TableKey(nil), order...)}
}

// Default returns the registry for the participation tracker's five tables
func Default() *Registry {
	return New(
		[]TableKey{Employees, Workshops, Cohorts, Events, Participants},
		map[TableKey]TableSpec{
			Employees: {
				File:        "employees.csv",
				Columns:     []string{ColStandardID, ColEmail},
				KeyColumn:   ColStandardID,
				OpenColumns: true,
			},
			Workshops: {
				File: "workshops.csv",
				Columns: []string{
					ColWorkshopNumber, ColSeries, ColSkill, ColGoal,
					ColWorkshopEvents, ColRegistered, ColParticipated,
				},
				KeyColumn: ColWorkshopNumber,
			},
			Cohorts: {
				File: "cohorts.csv",
				Columns: []string{
					ColName, ColDateStarted, ColNominated, ColInvited, ColJoined,
				},
				KeyColumn:   ColName,
				DateColumns: []string{ColDateStarted},
			},
			Events: {
				File: "events.csv",
				Columns: []string{
					ColEventID, ColName, ColDate, ColCategory, ColWorkshop,
					ColRegistrations, ColParticipants, ColHosted,
				},
				KeyColumn:   ColEventID,
				DateColumns: []string{ColDate},
			},
			Participants: {
				File: "participants.csv",
				Columns: []string{
					ColStandardID, ColEmail,
					ColEventsRegistered, ColEventsParticipated, ColEventsHosted,
					ColCohortsNominated, ColCohortsInvited, ColCohortsJoined,
					ColWaitlist, ColNominatedBy, ColNotes, ColTags, ColLastUpdated,
				},
				KeyColumn: ColStandardID,
			},
		},
	)
}

// Spec retrieves the spec for a table key
func (r *Registry) Spec(key TableKey) (TableSpec, error) {
	spec, ok := r.specs[key]
	if !ok {
		return TableSpec{}, fmt.Errorf("unknown table '%s'", key)
	}
	return spec, nil
}

// Keys returns all table keys in registration order
func (r *Registry) Keys() []TableKey {
	return append([]TableKey(nil), r.order...)
}

// Files returns the backing file names of all registered tables, in order
func (r *Registry) Files() []string {
	files := make([]string, 0, len(r.order))
	for _, k := range r.order {
		files = append(files, r.specs[k].File)
	}
	return files
}
