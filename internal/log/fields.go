package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldPeriod    = "period"
	FieldSeq       = "seq"
	FieldVendor    = "vendor"
	FieldElementID = "element_id"
	FieldBoxID     = "budget_box_id"
	FieldAmount    = "amount_yen"
	FieldCount     = "count"
	FieldDataset   = "dataset"
	FieldRef       = "ref"
	FieldSource    = "source"
	FieldValid     = "is_valid"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentSource   = "source"
	ComponentLedger   = "ledger"
	ComponentTaxonomy = "taxonomy"
	ComponentBudget   = "budget"
	ComponentValidate = "validate"
	ComponentSheets   = "sheets"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentBackend  = "backend"
)

// Operations defines standard operation names
const (
	OpLoad      = "load"
	OpBuild     = "build"
	OpAggregate = "aggregate"
	OpValidate  = "validate"
	OpExport    = "export"
	OpRecord    = "record"
	OpPublish   = "publish"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithRun(runID string) LogFields {
	f[FieldRunID] = runID
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithDataset adds the dataset name, row count and the sink reference.
func (f LogFields) WithDataset(name string, rows int, ref string) LogFields {
	f[FieldDataset] = name
	f[FieldCount] = rows
	f[FieldRef] = ref
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
