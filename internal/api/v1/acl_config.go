package v1

// access is what a caller needs to reach a route.
type access int

const (
	accessPublic access = iota
	// accessLogin answers 401 to anonymous callers.
	accessLogin
	// accessManageLoans answers 403 to anyone without the manage_loans permission.
	accessManageLoans
	// accessHost answers 403 to anyone but the host.
	accessHost
)

// routeAccess is keyed by route name. Unlisted routes are public.
var routeAccess = map[string]access{
	"my-borrowed": accessLogin,
	"signout":     accessLogin,

	"all-borrowed":               accessManageLoans,
	"reservations":               accessManageLoans,
	"bookinstances":              accessManageLoans,
	"renew-book-librarian":       accessManageLoans,
	"renew-book-librarian-post":  accessManageLoans,
	"return-book-librarian":      accessManageLoans,
	"return-book-librarian-post": accessManageLoans,
	"checkout-book":              accessManageLoans,
	"reserve-book":               accessManageLoans,
	"author-create":              accessManageLoans,
	"author-update":              accessManageLoans,
	"author-delete":              accessManageLoans,
	"book-create":                accessManageLoans,
	"book-update":                accessManageLoans,
	"book-delete":                accessManageLoans,
	"bookinstance-create":        accessManageLoans,
	"bookinstance-update":        accessManageLoans,
	"bookinstance-delete":        accessManageLoans,
	"genre-create":               accessManageLoans,
	"language-create":            accessManageLoans,
	"overdue-scan":               accessManageLoans,
	"job-detail":                 accessManageLoans,

	"users":     accessHost,
	"user-role": accessHost,
}

func routeAccessFor(name string) access {
	return routeAccess[name]
}
