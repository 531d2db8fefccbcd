package app

// Stage is one state of the bootstrap pipeline. Stages never overlap: each
// depends on the completed side effects of the one before it.
type Stage int

const (
	StageInit Stage = iota
	StageManifestsFetched
	StageResolved
	StageDownloaded
	StageStage1Done
	StageStage2Done
	StageArchived
)

func (s Stage) String() string {
	switch s {
	case StageInit:
		return "init"
	case StageManifestsFetched:
		return "manifests-fetched"
	case StageResolved:
		return "resolved"
	case StageDownloaded:
		return "downloaded"
	case StageStage1Done:
		return "stage1-done"
	case StageStage2Done:
		return "stage2-done"
	case StageArchived:
		return "archived"
	default:
		return "unknown"
	}
}
