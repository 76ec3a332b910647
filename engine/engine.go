package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tracker/keyset"
	"tracker/resolver"
	"tracker/schema"
	"tracker/store"
)

// ErrNotFound is returned when the event or cohort being updated does not
// exist. The operation has no effect in that case.
var ErrNotFound = errors.New("not found")

// UpdatedAtLayout is the format of the LastUpdated participant column
const UpdatedAtLayout = "2006-01-02 15:04:05"

// Engine performs the multi-table read-modify-write updates that keep the
// denormalized membership lists consistent between the owning table (event or
// cohort) and the per-employee participant rollup. It is the sole legitimate
// writer of that cross-table invariant.
type Engine struct {
	store *store.Store
	audit *resolver.AuditLog
	log   *zap.Logger
	now   func() time.Time
}

// New creates an Engine
func New(st *store.Store, audit *resolver.AuditLog, log *zap.Logger) *Engine {
	return &Engine{store: st, audit: audit, log: log, now: time.Now}
}

// EventUpdate describes one event-status update. False flags are strictly
// additive no-ops, never removals.
type EventUpdate struct {
	EventID      string
	EmployeeKeys []string
	Unresolved   []string
	Registered   bool
	Participated bool
	Hosted       bool
}

// EventDelta reports the genuinely new additions per status dimension
type EventDelta struct {
	Registered   int
	Participated int
	Hosted       int
}

// eventDimensions pairs each event-side list column with its participant-side
// mirror
var eventDimensions = []struct {
	eventCol       string
	participantCol string
}{
	{schema.ColRegistrations, schema.ColEventsRegistered},
	{schema.ColParticipants, schema.ColEventsParticipated},
	{schema.ColHosted, schema.ColEventsHosted},
}

// UpdateEventStatus unions the given employee keys into the event's status
// lists and mirrors each addition into the matching participant rollup field,
// creating participant rows lazily. Applying the same update twice yields the
// same end state and reports all-zero deltas the second time.
func (e *Engine) UpdateEventStatus(u EventUpdate) (EventDelta, error) {
	var delta EventDelta
	if u.EventID == "" || len(u.EmployeeKeys) == 0 ||
		(!u.Registered && !u.Participated && !u.Hosted) {
		return delta, nil
	}

	opID := uuid.NewString()
	e.log.Info("event status update",
		zap.String("op", opID),
		zap.String("event", u.EventID),
		zap.Int("keys", len(u.EmployeeKeys)))

	// Work against the latest on-disk state
	e.store.Invalidate()

	events, err := e.store.Load(schema.Events)
	if err != nil {
		return delta, err
	}
	employees, err := e.store.Load(schema.Employees)
	if err != nil {
		return delta, err
	}
	participants, err := e.store.Load(schema.Participants)
	if err != nil {
		return delta, err
	}

	idx := events.FindRow(schema.ColEventID, u.EventID)
	if idx < 0 {
		return delta, fmt.Errorf("event '%s' %w", u.EventID, ErrNotFound)
	}
	eventRow := events.Rows[idx]

	flags := map[string]bool{
		schema.ColRegistrations: u.Registered,
		schema.ColParticipants:  u.Participated,
		schema.ColHosted:        u.Hosted,
	}
	added := make(map[string]int, len(eventDimensions))
	for _, dim := range eventDimensions {
		if !flags[dim.eventCol] {
			continue
		}
		set := keyset.Parse(eventRow[dim.eventCol])
		added[dim.eventCol] = set.Add(u.EmployeeKeys...)
		eventRow[dim.eventCol] = set.String()
	}
	delta.Registered = added[schema.ColRegistrations]
	delta.Participated = added[schema.ColParticipants]
	delta.Hosted = added[schema.ColHosted]

	emailByID := e.employeeEmails(employees)
	unresolved := make(map[string]struct{}, len(u.Unresolved))
	for _, id := range u.Unresolved {
		unresolved[id] = struct{}{}
	}

	for _, key := range u.EmployeeKeys {
		row, created := e.participantRow(participants, key, emailByID, unresolved)
		changed := created
		for _, dim := range eventDimensions {
			if !flags[dim.eventCol] {
				continue
			}
			set := keyset.Parse(row[dim.participantCol])
			if set.Add(u.EventID) > 0 {
				changed = true
			}
			row[dim.participantCol] = set.String()
		}
		if changed {
			row[schema.ColLastUpdated] = e.now().Format(UpdatedAtLayout)
		}
	}

	if err := e.audit.Record(u.Unresolved); err != nil {
		e.log.Warn("audit log write failed", zap.String("op", opID), zap.Error(err))
	}

	if err := e.store.Save(schema.Events, events); err != nil {
		return EventDelta{}, err
	}
	if err := e.store.Save(schema.Participants, participants); err != nil {
		// Owning table already written; re-running the same update converges
		return EventDelta{}, err
	}
	e.store.Invalidate()

	e.log.Info("event status updated",
		zap.String("op", opID),
		zap.Int("registered", delta.Registered),
		zap.Int("participated", delta.Participated),
		zap.Int("hosted", delta.Hosted))
	return delta, nil
}

// Action selects whether a cohort update adds or removes membership
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// CohortUpdate describes one cohort-membership update
type CohortUpdate struct {
	Cohort       string
	EmployeeKeys []string
	Unresolved   []string
	Nominated    bool
	Invited      bool
	Joined       bool
	NominatedBy  string
	Notes        string
	Action       Action
}

// CohortDelta reports the keys actually added or removed per dimension
type CohortDelta struct {
	Nominated int
	Invited   int
	Joined    int
}

var cohortDimensions = []struct {
	cohortCol      string
	participantCol string
}{
	{schema.ColNominated, schema.ColCohortsNominated},
	{schema.ColInvited, schema.ColCohortsInvited},
	{schema.ColJoined, schema.ColCohortsJoined},
}

// UpdateCohortMembership adds employee keys to, or removes them from, the
// cohort's membership lists and the mirrored participant rollup fields.
// NominatedBy and Notes annotations are appended for newly-affected
// participants on add only; removal never touches them and never creates
// missing participant rows.
func (e *Engine) UpdateCohortMembership(u CohortUpdate) (CohortDelta, error) {
	var delta CohortDelta
	if u.Cohort == "" || len(u.EmployeeKeys) == 0 ||
		(!u.Nominated && !u.Invited && !u.Joined) {
		return delta, nil
	}
	if u.Action != ActionAdd && u.Action != ActionRemove {
		return delta, fmt.Errorf("unknown action '%s'", u.Action)
	}

	opID := uuid.NewString()
	e.log.Info("cohort membership update",
		zap.String("op", opID),
		zap.String("cohort", u.Cohort),
		zap.String("action", string(u.Action)),
		zap.Int("keys", len(u.EmployeeKeys)))

	e.store.Invalidate()

	cohorts, err := e.store.Load(schema.Cohorts)
	if err != nil {
		return delta, err
	}
	employees, err := e.store.Load(schema.Employees)
	if err != nil {
		return delta, err
	}
	participants, err := e.store.Load(schema.Participants)
	if err != nil {
		return delta, err
	}

	idx := cohorts.FindRow(schema.ColName, u.Cohort)
	if idx < 0 {
		return delta, fmt.Errorf("cohort '%s' %w", u.Cohort, ErrNotFound)
	}
	cohortRow := cohorts.Rows[idx]

	flags := map[string]bool{
		schema.ColNominated: u.Nominated,
		schema.ColInvited:   u.Invited,
		schema.ColJoined:    u.Joined,
	}
	counts := make(map[string]int, len(cohortDimensions))
	for _, dim := range cohortDimensions {
		if !flags[dim.cohortCol] {
			continue
		}
		set := keyset.Parse(cohortRow[dim.cohortCol])
		if u.Action == ActionAdd {
			counts[dim.cohortCol] = set.Add(u.EmployeeKeys...)
		} else {
			counts[dim.cohortCol] = set.Remove(u.EmployeeKeys...)
		}
		cohortRow[dim.cohortCol] = set.String()
	}
	delta.Nominated = counts[schema.ColNominated]
	delta.Invited = counts[schema.ColInvited]
	delta.Joined = counts[schema.ColJoined]

	emailByID := e.employeeEmails(employees)
	unresolved := make(map[string]struct{}, len(u.Unresolved))
	for _, id := range u.Unresolved {
		unresolved[id] = struct{}{}
	}

	for _, key := range u.EmployeeKeys {
		var row store.Row
		changed := false
		if u.Action == ActionAdd {
			var created bool
			row, created = e.participantRow(participants, key, emailByID, unresolved)
			changed = created
		} else {
			// Nothing to remove from a row that doesn't exist
			ridx := participants.FindRow(schema.ColStandardID, key)
			if ridx < 0 {
				continue
			}
			row = participants.Rows[ridx]
		}

		for _, dim := range cohortDimensions {
			if !flags[dim.cohortCol] {
				continue
			}
			set := keyset.Parse(row[dim.participantCol])
			var n int
			if u.Action == ActionAdd {
				n = set.Add(u.Cohort)
			} else {
				n = set.Remove(u.Cohort)
			}
			if n > 0 {
				changed = true
			}
			row[dim.participantCol] = set.String()
		}

		if changed && u.Action == ActionAdd {
			if u.NominatedBy != "" {
				row[schema.ColNominatedBy] = appendUniqueEntry(row[schema.ColNominatedBy], u.NominatedBy, ", ")
			}
			if u.Notes != "" {
				row[schema.ColNotes] = appendUniqueEntry(row[schema.ColNotes], u.Notes, "\n")
			}
		}
		if changed {
			row[schema.ColLastUpdated] = e.now().Format(UpdatedAtLayout)
		}
	}

	if err := e.audit.Record(u.Unresolved); err != nil {
		e.log.Warn("audit log write failed", zap.String("op", opID), zap.Error(err))
	}

	if err := e.store.Save(schema.Cohorts, cohorts); err != nil {
		return CohortDelta{}, err
	}
	if err := e.store.Save(schema.Participants, participants); err != nil {
		return CohortDelta{}, err
	}
	e.store.Invalidate()

	e.log.Info("cohort membership updated",
		zap.String("op", opID),
		zap.Int("nominated", delta.Nominated),
		zap.Int("invited", delta.Invited),
		zap.Int("joined", delta.Joined))
	return delta, nil
}

// employeeEmails builds a StandardID -> Email lookup
func (e *Engine) employeeEmails(employees *store.Table) map[string]string {
	out := make(map[string]string, len(employees.Rows))
	for _, row := range employees.Rows {
		id := row[schema.ColStandardID]
		if id != "" && out[id] == "" {
			out[id] = row[schema.ColEmail]
		}
	}
	return out
}

// participantRow locates the participant row for an employee key, creating
// it if absent. New rows get the employee's email where resolvable; an
// unresolved key that looks like an email is reused as a best-effort
// placeholder. Waitlist defaults to "No".
func (e *Engine) participantRow(participants *store.Table, key string, emailByID map[string]string, unresolved map[string]struct{}) (store.Row, bool) {
	if idx := participants.FindRow(schema.ColStandardID, key); idx >= 0 {
		return participants.Rows[idx], false
	}

	email := emailByID[key]
	if email == "" {
		if _, isUnresolved := unresolved[key]; isUnresolved && strings.Contains(key, "@") {
			email = key
		}
	}

	row := make(store.Row, len(participants.Columns))
	for _, col := range participants.Columns {
		row[col] = ""
	}
	row[schema.ColStandardID] = key
	row[schema.ColEmail] = email
	row[schema.ColWaitlist] = "No"
	participants.Rows = append(participants.Rows, row)
	return row, true
}

// appendUniqueEntry appends entry to a delimited cell, skipping the append
// when the exact entry is already present
func appendUniqueEntry(cell, entry, sep string) string {
	if cell == "" {
		return entry
	}
	for _, existing := range strings.Split(cell, sep) {
		if existing == entry {
			return cell
		}
	}
	return cell + sep + entry
}
