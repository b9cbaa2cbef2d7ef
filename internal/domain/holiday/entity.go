package holiday

import "time"

type Type string

const (
	TypeNational Type = "NATIONAL"
	TypeCompany  Type = "COMPANY"
	TypeOptional Type = "OPTIONAL"
)

// Holiday is a non-working date. BranchID nil means it applies to every branch of the tenant.
type Holiday struct {
	ID        string
	TenantID  string
	BranchID  *string
	Name      string
	Date      time.Time
	Type      Type
	CreatedAt time.Time
}
