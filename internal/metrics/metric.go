package metrics

// Metric is one daily self-report. Everything except Date is optional and
// stored as NULL when absent. Values are taken as given, no range checks
// (fatigue score is nominally 1-5 but the producer is trusted with that).
type Metric struct {
	ID                  int      `json:"id"`
	Date                string   `json:"date"` // YYYY-MM-DD, client supplied
	FatigueScore        *int     `json:"fatigue_score,omitempty"`
	NearWorkMin         *int     `json:"near_work_min,omitempty"`
	Breaks              *int     `json:"breaks,omitempty"`
	ContrastMinReadable *float64 `json:"contrast_min_readable,omitempty"`
}
