package model

// Identity is owned by an external collaborator; user and company ids are
// opaque foreign keys and never validated here.
type (
	TaskID    string
	GroupID   string
	UserID    string
	CompanyID string
)

// DateLayout is the calendar-date wire format used everywhere in the core.
// Dates carry no time-of-day and no timezone.
const DateLayout = "2006-01-02"
