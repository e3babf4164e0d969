package console

import "github.com/brightmill/storefront/pkg/catalog"

// Messages delivered by the console's asynchronous commands. Each carries
// the screen generation it was issued under; the app drops messages whose
// generation no longer matches, which is how responses landing after a
// navigation are discarded.

type storesLoadedMsg struct {
	gen    int
	stores []catalog.Record
	err    error
}

type storeCreatedMsg struct {
	gen   int
	store catalog.Record
	err   error
}

type recordsLoadedMsg struct {
	gen     int
	kind    catalog.Kind
	records []catalog.Record

	// titles maps referenced record ids to display titles for the
	// reference columns of the listing.
	titles map[string]string

	err error
}

// optionsLoadedMsg carries the reference pickers' datasets, one entry per
// referenced kind. A kind whose fetch failed is simply absent.
type optionsLoadedMsg struct {
	gen     int
	options map[catalog.Kind][]catalog.Record
}

type recordSavedMsg struct {
	gen     int
	created bool
	record  catalog.Record
	err     error
}

type recordDeletedMsg struct {
	gen int
	err error
}

type toastExpiredMsg struct {
	id int
}
