package tool

// SchemaValidator produces a fresh, zero-valued pointer to the Go struct a
// schema reference name is bound to. Validation decodes into this pointer
// via the repair-then-validate chain (pkg/core/utils.ValidateAndRepairJSON),
// which tolerates common malformed-JSON shapes before applying a
// zero-tolerance required-field check — this keeps pkg/core/tool decoupled
// from any specific tool's payload types the way the teacher's prompt
// registry never imports agent-specific response structs.
type SchemaValidator func() interface{}
