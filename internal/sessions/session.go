package sessions

// Session is one completed rest/exercise activity, e.g. five minutes of
// "nearfar" focus switching or a plain screen-off rest break.
type Session struct {
	ID          int    `json:"id"`
	Timestamp   int64  `json:"ts"` // unix seconds, assigned at insert time
	Type        string `json:"type"`
	DurationSec int    `json:"duration_sec"`
	Meta        string `json:"meta"` // free text, may hold serialized JSON
}
