package grouping

import (
	"sort"

	"github.com/MikeSquared-Agency/digest/internal/snapshot"
)

// Group partitions rows by ticket number and deduplicates their descriptions.
// Groups come back sorted by ticket number; descriptions keep first-seen order.
func Group(rows []snapshot.LogRow) []snapshot.TicketGroup {
	byTicket := make(map[string]*snapshot.TicketGroup)
	seen := make(map[string]map[string]bool)

	for _, row := range rows {
		g, ok := byTicket[row.TicketNumber]
		if !ok {
			g = &snapshot.TicketGroup{TicketNumber: row.TicketNumber}
			byTicket[row.TicketNumber] = g
			seen[row.TicketNumber] = make(map[string]bool)
		}
		if seen[row.TicketNumber][row.Description] {
			continue
		}
		seen[row.TicketNumber][row.Description] = true
		g.Descriptions = append(g.Descriptions, row.Description)
	}

	tickets := make([]string, 0, len(byTicket))
	for t := range byTicket {
		tickets = append(tickets, t)
	}
	sort.Strings(tickets)

	groups := make([]snapshot.TicketGroup, 0, len(tickets))
	for _, t := range tickets {
		groups = append(groups, *byTicket[t])
	}
	return groups
}

// Candidates returns the groups that need a remote summary.
// Single-description tickets are dropped and never produce a change record.
func Candidates(groups []snapshot.TicketGroup) []snapshot.TicketGroup {
	var out []snapshot.TicketGroup
	for _, g := range groups {
		if g.IsCandidate() {
			out = append(out, g)
		}
	}
	return out
}
