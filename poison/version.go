package poison

// Version information for the poisoning library.
const (
	// Version is the current version of the library.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Info provides metadata about the poisoning library.
type Info struct {
	// Version is the library version string.
	Version string

	// Protocol names the abnormal-termination detection strategy.
	Protocol string
}

// GetInfo returns metadata about the poisoning library.
//
// Example:
//
//	info := poison.GetInfo()
//	fmt.Printf("poison %s (%s)\n", info.Version, info.Protocol)
func GetInfo() Info {
	return Info{
		Version:  Version,
		Protocol: "two-phase commit/release",
	}
}
