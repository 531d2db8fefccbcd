package domain

// Topic is a named overlay repository unit. Topics are published in a central
// manifest and, once enabled, are persisted into the target system state so
// that tracking survives into the built system.
type Topic struct {
	// Name is the overlay name, which doubles as its repository suite.
	Name string `json:"name"`

	// Description is an optional human-readable summary.
	Description *string `json:"description"`

	// Date is the launch date as a Unix timestamp.
	Date int64 `json:"date"`

	// UpdateDate is the last update as a Unix timestamp.
	UpdateDate int64 `json:"update_date"`

	// Arch lists the architectures the overlay carries. Not persisted into
	// target-system state.
	Arch []string `json:"arch,omitempty"`

	// Packages is the allow-list of packages affected by the overlay.
	Packages []string `json:"packages"`

	// Draft marks overlays whose upstream change is still in review. Not
	// persisted into target-system state.
	Draft bool `json:"draft,omitempty"`
}
