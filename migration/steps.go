package migration

import (
	"sort"

	"tracker/keyset"
	"tracker/schema"
)

// CurrentVersion is the schema version this build of the application writes
const CurrentVersion = "1.4.0"

// DefaultSteps returns the historical migration chain. Each hop is
// registered individually; there is no migration graph search.
func DefaultSteps() []Step {
	return []Step{
		{
			From:        "1.0.0",
			To:          "1.1.0",
			Description: "add LastUpdated audit column to participants",
			Apply: func(ctx *Context) error {
				return ctx.AddColumn("participants.csv", "LastUpdated", "")
			},
		},
		{
			From:        "1.1.0",
			To:          "1.2.0",
			Description: "split cohort membership into Nominated/Invited/Joined; track event hosts",
			Apply: func(ctx *Context) error {
				if err := ctx.RenameColumn("cohorts.csv", "Participants", "Joined"); err != nil {
					return err
				}
				if err := ctx.AddColumn("cohorts.csv", "Invited", ""); err != nil {
					return err
				}
				// AddColumn appends, leaving Invited after Joined
				if err := ctx.ReorderColumns("cohorts.csv", []string{
					schema.ColName, schema.ColDateStarted,
					schema.ColNominated, schema.ColInvited, schema.ColJoined,
				}); err != nil {
					return err
				}
				return ctx.AddColumn("events.csv", "Hosted", "")
			},
		},
		{
			From:        "1.2.0",
			To:          "1.3.0",
			Description: "restructure participants from one row per event into a per-employee rollup",
			Apply:       restructureParticipants,
		},
		{
			From:        "1.3.0",
			To:          "1.4.0",
			Description: "add Waitlist, NominatedBy, Notes and Tags participant columns",
			Apply: func(ctx *Context) error {
				for _, col := range []struct{ name, def string }{
					{"Waitlist", "No"},
					{"NominatedBy", ""},
					{"Notes", ""},
					{"Tags", ""},
				} {
					if err := ctx.AddColumn("participants.csv", col.name, col.def); err != nil {
						return err
					}
				}
				// The new columns belong before LastUpdated
				return ctx.ReorderColumns("participants.csv", []string{
					schema.ColStandardID, schema.ColEmail,
					schema.ColEventsRegistered, schema.ColEventsParticipated, schema.ColEventsHosted,
					schema.ColCohortsNominated, schema.ColCohortsInvited, schema.ColCohortsJoined,
					schema.ColWaitlist, schema.ColNominatedBy, schema.ColNotes, schema.ColTags,
					schema.ColLastUpdated,
				})
			},
		},
	}
}

// rollupColumns is the participant header written by the restructure step.
// The annotation columns arrive in a later step.
var rollupColumns = []string{
	"StandardID", "Email",
	"EventsRegistered", "EventsParticipated", "EventsHosted",
	"CohortsNominated", "CohortsInvited", "CohortsJoined",
	"LastUpdated",
}

// rollup accumulates one per-employee summary during the restructure
type rollup struct {
	email   string
	updated string
	lists   map[string]*keyset.Set
}

func newRollup() *rollup {
	r := &rollup{lists: make(map[string]*keyset.Set, len(rollupColumns))}
	for _, col := range rollupColumns[2 : len(rollupColumns)-1] {
		s := keyset.New()
		r.lists[col] = &s
	}
	return r
}

// restructureParticipants folds the membership facts scattered across the
// event and cohort tables into one rollup row per employee. The legacy
// participant table (one row per employee-event pair) contributes the known
// employee set, emails and update stamps; employees with no activity keep an
// empty rollup. Already-restructured files are left alone.
func restructureParticipants(ctx *Context) error {
	if !ctx.FileExists("participants.csv") {
		return nil
	}
	header, legacyRows, err := ctx.ReadFile("participants.csv")
	if err != nil {
		return err
	}
	if indexOf(header, "EventsRegistered") >= 0 {
		// Already in the rollup shape
		return nil
	}

	rollups := make(map[string]*rollup)
	get := func(id string) *rollup {
		if r, ok := rollups[id]; ok {
			return r
		}
		r := newRollup()
		rollups[id] = r
		return r
	}

	// Seed from legacy rows so inactive employees keep an (empty) rollup
	idIdx := indexOf(header, "StandardID")
	emailIdx := indexOf(header, "Email")
	updatedIdx := indexOf(header, "LastUpdated")
	if idIdx >= 0 {
		for _, legacy := range legacyRows {
			if legacy[idIdx] == "" {
				continue
			}
			r := get(legacy[idIdx])
			if emailIdx >= 0 && r.email == "" {
				r.email = legacy[emailIdx]
			}
			if updatedIdx >= 0 && legacy[updatedIdx] > r.updated {
				r.updated = legacy[updatedIdx]
			}
		}
	}

	if err := foldMemberships(ctx, "events.csv", "EventID", get, map[string]string{
		"Registrations": "EventsRegistered",
		"Participants":  "EventsParticipated",
		"Hosted":        "EventsHosted",
	}); err != nil {
		return err
	}
	if err := foldMemberships(ctx, "cohorts.csv", "Name", get, map[string]string{
		"Nominated": "CohortsNominated",
		"Invited":   "CohortsInvited",
		"Joined":    "CohortsJoined",
	}); err != nil {
		return err
	}

	ids := make([]string, 0, len(rollups))
	for id := range rollups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([][]string, 0, len(ids))
	for _, id := range ids {
		r := rollups[id]
		out = append(out, []string{
			id, r.email,
			r.lists["EventsRegistered"].String(),
			r.lists["EventsParticipated"].String(),
			r.lists["EventsHosted"].String(),
			r.lists["CohortsNominated"].String(),
			r.lists["CohortsInvited"].String(),
			r.lists["CohortsJoined"].String(),
			r.updated,
		})
	}

	return ctx.WriteFile("participants.csv", rollupColumns, out)
}

// foldMemberships scans one owning table's membership list columns and
// unions the owning key into the matching rollup field of every listed
// employee. A missing file or missing column is tolerated.
func foldMemberships(ctx *Context, file, keyCol string, get func(string) *rollup, fields map[string]string) error {
	if !ctx.FileExists(file) {
		return nil
	}
	header, rows, err := ctx.ReadFile(file)
	if err != nil {
		return err
	}
	keyIdx := indexOf(header, keyCol)
	if keyIdx < 0 {
		return nil
	}

	for listCol, rollupCol := range fields {
		listIdx := indexOf(header, listCol)
		if listIdx < 0 {
			continue
		}
		for _, row := range rows {
			owningKey := row[keyIdx]
			if owningKey == "" {
				continue
			}
			for _, employee := range keyset.Parse(row[listIdx]).Values() {
				get(employee).lists[rollupCol].Add(owningKey)
			}
		}
	}
	return nil
}
