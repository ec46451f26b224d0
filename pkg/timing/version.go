package timing

// Version information for the timing module.
const (
	// Version is the current version of the timing module.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)
