package logg

// Field names shared by every structured log line.
const (
	Layer        = "layer"
	Operation    = "op"
	Action       = "action"
	Locator      = "locator"
	Attempt      = "attempt"
	InvocationID = "invocation_id"
	Condition    = "condition"
	Backend      = "backend"
	URL          = "url"
	Step         = "step"
)
