package domain

// Recipe names the two package sets a bootstrap run is built from. Stub
// packages are unpacked directly into the target before any guest runs; base
// packages are everything a bootable system always needs. Both sets are fed
// to the resolver, so the actual install closure is larger.
type Recipe struct {
	StubPackages []string
	BasePackages []string
}
