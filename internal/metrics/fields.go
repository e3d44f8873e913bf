package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrMethod = "method"
	AttrPath   = "path"
	AttrStatus = "status"
	AttrReason = "reason"
	AttrSource = "source"
)

// Rejection reasons attached to matches_rejected_total.
const (
	ReasonInvalid          = "invalid"
	ReasonNotChronological = "not_chronological"
	ReasonDuplicate        = "duplicate"
)
