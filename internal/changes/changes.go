package changes

import (
	"crypto/md5"
	"encoding/hex"
	"time"

	"github.com/MikeSquared-Agency/digest/internal/snapshot"
)

// ControlSum is the hex MD5 of the business fields concatenated without separators.
func ControlSum(logID, activityDuration, customerID, project, subproject, summary string) string {
	h := md5.New()
	for _, part := range []string{logID, activityDuration, customerID, project, subproject, summary} {
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Materialize emits one change per row whose ticket has a summary, in row order.
// Every record carries the same update date.
func Materialize(rows []snapshot.LogRow, summaries map[string]string, now time.Time) []snapshot.ChangeRecord {
	var out []snapshot.ChangeRecord
	for _, row := range rows {
		summary, ok := summaries[row.TicketNumber]
		if !ok {
			continue
		}
		out = append(out, snapshot.ChangeRecord{
			LogID:            row.LogID,
			ActivityDuration: row.ActivityDuration,
			CustomerID:       row.CustomerID,
			Project:          row.Project,
			Subproject:       row.Subproject,
			Description:      summary,
			ControlSum:       ControlSum(row.LogID, row.ActivityDuration, row.CustomerID, row.Project, row.Subproject, summary),
			UpdateDate:       now,
		})
	}
	return out
}
