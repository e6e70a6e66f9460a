package logging

// Standardized attribute keys shared across components.
const (
	FieldComponent  = "component"
	FieldEventType  = "event_type"
	FieldErrorHint  = "error_hint"
	FieldInstanceID = "instance_id"
	FieldUnitID     = "unit_id"
	FieldDomain     = "domain"
	FieldJobRef     = "job_ref"
	FieldToken      = "token"
)
