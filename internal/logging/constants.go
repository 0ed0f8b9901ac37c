package logging

// Standardized field names for structured logging.
const (
	FieldFile          = "file_path"
	FieldComponent     = "component"
	FieldOperation     = "operation"
	FieldStatus        = "status"
	FieldError         = "error"
	FieldCount         = "count"
	FieldRow           = "row"
	FieldDuration      = "duration_ms"
	FieldStatementID   = "statement_id"
	FieldTransactionID = "transaction_id"
	FieldEntryID       = "entry_id"
	FieldUser          = "user_id"
	FieldBank          = "bank_name"
	FieldAmount        = "amount"
	FieldWorkers       = "workers"
)
