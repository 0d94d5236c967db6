package catalog

// Category is a sale category invoices are filed under.
type Category struct {
	ID        int64
	Name      string
	Shortname string
}

// Branch is an office an invoice is issued from.
type Branch struct {
	ID        int64
	Name      string
	Shortname string
}

// User is a staff member who can issue invoices.
type User struct {
	ID            int64
	Name          string
	Email         string
	DefaultBranch int64
}
