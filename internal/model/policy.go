package model

// RevisionPolicy is read-only company configuration consumed by the core.
// The policy store owns writes.
type RevisionPolicy struct {
	EnableRevisions bool `json:"enableRevisions"`

	// EnableDaysRule bounds each revision to a per-step day budget.
	// PerRevisionDays maps the 1-based revision ordinal to its budget;
	// ordinals without an entry fall back to MaxDays.
	EnableDaysRule  bool        `json:"enableDaysRule"`
	MaxDays         int         `json:"maxDays"`
	PerRevisionDays map[int]int `json:"perRevisionDays,omitempty"`

	EnableMaxRevision bool `json:"enableMaxRevision"`
	RevisionLimit     int  `json:"revisionLimit"`

	// RestrictHighPriorityRevision blocks revisions on high-priority
	// one-time tasks entirely.
	RestrictHighPriorityRevision bool `json:"restrictHighPriorityRevision"`
}
