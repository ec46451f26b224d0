package flowsync

// Version information for the flowsync runtime module.
const (
	// Version is the current version of the flowsync runtime module.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)
