package schema

// TableKey identifies a logical table
type TableKey string

const (
	Employees    TableKey = "employees"
	Workshops    TableKey = "workshops"
	Cohorts      TableKey = "cohorts"
	Events       TableKey = "events"
	Participants TableKey = "participants"
)

// Employee table columns
const (
	ColStandardID = "StandardID"
	ColEmail      = "Email"
)

// LegacyEmailColumn is the header name older employee exports used for the
// email column. It is folded into ColEmail on load.
const LegacyEmailColumn = "Work Email Address"

// Workshop table columns
const (
	ColWorkshopNumber = "WorkshopNumber"
	ColSeries         = "Series"
	ColSkill          = "Skill"
	ColGoal           = "Goal"
	ColWorkshopEvents = "Events"
	ColRegistered     = "Registered"
	ColParticipated   = "Participated"
)

// Cohort table columns
const (
	ColName        = "Name"
	ColDateStarted = "DateStarted"
	ColNominated   = "Nominated"
	ColInvited     = "Invited"
	ColJoined      = "Joined"
)

// Event table columns
const (
	ColEventID       = "EventID"
	ColDate          = "Date"
	ColCategory      = "Category"
	ColWorkshop      = "Workshop"
	ColRegistrations = "Registrations"
	ColParticipants  = "Participants"
	ColHosted        = "Hosted"
)

// Participant table columns
const (
	ColEventsRegistered   = "EventsRegistered"
	ColEventsParticipated = "EventsParticipated"
	ColEventsHosted       = "EventsHosted"
	ColCohortsNominated   = "CohortsNominated"
	ColCohortsInvited     = "CohortsInvited"
	ColCohortsJoined      = "CohortsJoined"
	ColWaitlist           = "Waitlist"
	ColNominatedBy        = "NominatedBy"
	ColNotes              = "Notes"
	ColTags               = "Tags"
	ColLastUpdated        = "LastUpdated"
)

// TableSpec describes one logical table: its backing file, the canonical
// column set in order, the key column, and which columns are coerced to dates
type TableSpec struct {
	File        string
	Columns     []string
	KeyColumn   string
	DateColumns []string
	// OpenColumns marks a table whose backing file may carry columns beyond
	// the canonical set; extras are preserved and echoed back verbatim
	OpenColumns bool
}

// HasColumn reports whether name is one of the canonical columns
func (ts TableSpec) HasColumn(name string) bool {
	for _, c := range ts.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// IsDateColumn reports whether name is coerced to a date on load
func (ts TableSpec) IsDateColumn(name string) bool {
	for _, c := range ts.DateColumns {
		if c == name {
			return true
		}
	}
	return false
}
