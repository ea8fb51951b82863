package version

// Set at link time, e.g.
// -ldflags "-X nless/internal/version.Version=v0.3.0".
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// String renders "Version+commit (date)", omitting whatever was not set at
// build time. Commits are shortened to 12 characters.
func String() string {
	s := Version
	if Commit != "" {
		c := Commit
		if len(c) > 12 {
			c = c[:12]
		}
		s += "+" + c
	}
	if Date != "" {
		s += " (" + Date + ")"
	}
	return s
}
