package metrics

// Attribute keys shared by every instrument.
const (
	AttrMethod = "method"
	AttrRoute  = "route"
	AttrStatus = "status"
	AttrKind   = "kind"
	AttrReason = "reason"
	AttrResult = "result"
)
