package instrumentation

// Operation types for Google API metrics.
const (
	OperationSearch = "search"
	OperationList   = "list"
	OperationGet    = "get"
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationShare  = "share"
)

// APIOperation identifies a Google service and the kind of call made to it.
// Both fields come from closed constant sets, which bounds label cardinality.
type APIOperation struct {
	Service   string
	Operation string
}

// String returns "service.operation".
func (o APIOperation) String() string {
	return o.Service + "." + o.Operation
}
