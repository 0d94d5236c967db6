package contractor

import "fmt"

// Role distinguishes the two contractor slots an invoice can reference.
// Customer and receiver may point at the same backing record but carry
// different semantics (who pays vs who receives).
type Role string

const (
	RoleCustomer Role = "customer"
	RoleReceiver Role = "receiver"
)

// Contractor is a counterparty record owned by the external business service.
type Contractor struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	NIP        string `json:"nip"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
}

// FetchError is a failed fetch against the business service. Detail carries
// the error payload the service responded with.
type FetchError struct {
	StatusCode int
	Detail     string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("contractor fetch failed with status %d: %s", e.StatusCode, e.Detail)
}
