package snapshot

import "time"

// LogRow is one time-tracking entry read from a snapshot.
// Business fields hold the database's text rendering of each column.
type LogRow struct {
	LogID            string
	ActivityDuration string
	CustomerID       string
	Project          string
	Subproject       string
	TicketNumber     string
	Description      string
}

// TicketGroup collects the distinct descriptions logged against one ticket.
type TicketGroup struct {
	TicketNumber string
	Descriptions []string // distinct, first-seen order
}

// IsCandidate reports whether the group has enough distinct descriptions to be worth summarizing.
func (g TicketGroup) IsCandidate() bool {
	return len(g.Descriptions) > 1
}

// ChangeRecord is a row of the derived changes table.
type ChangeRecord struct {
	LogID            string
	ActivityDuration string
	CustomerID       string
	Project          string
	Subproject       string
	Description      string // ticket summary
	ControlSum       string
	UpdateDate       time.Time
}
