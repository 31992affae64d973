package models

// Audited actions.
const (
	AuditCreateAccount        = "CREATE_ACCOUNT"
	AuditUpdateDefaultAccount = "UPDATE_DEFAULT_ACCOUNT"
	AuditCreateTransaction    = "CREATE_TRANSACTION"
	AuditUpdateTransaction    = "UPDATE_TRANSACTION"
	AuditDeleteTransactions   = "DELETE_TRANSACTIONS"
	AuditUpdateBudget         = "UPDATE_BUDGET"
)

// Audited resource types.
const (
	ResourceAccount     = "account"
	ResourceTransaction = "transaction"
	ResourceBudget      = "budget"
)

// AuditLog records a ledger mutation and who made it. Changes holds a JSON
// object of the relevant fields after the mutation.
type AuditLog struct {
	Base
	Actor        string `gorm:"not null;index" json:"actor"`
	Action       string `gorm:"not null;index" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `gorm:"index" json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `json:"changes,omitempty"`
}
