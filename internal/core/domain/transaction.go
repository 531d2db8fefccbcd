package domain

// Transaction is the result of one resolve call: the set of packages to
// install in dependency order, plus the aggregate disk-size delta the
// installation would cause.
//
// A Transaction is immutable and owned by its requester. The same pool may
// produce any number of independent Transactions.
type Transaction struct {
	// Packages lists every package to install, topologically ordered so
	// that dependencies precede their dependents.
	Packages []PackageMeta

	// SizeDelta is the signed change in installed size, in bytes.
	SizeDelta int64
}

// FileNames returns the derived artifact file name of every package in
// install order.
func (t *Transaction) FileNames() []string {
	names := make([]string, len(t.Packages))
	for i, pkg := range t.Packages {
		names[i] = pkg.FileName()
	}
	return names
}
