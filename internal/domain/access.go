package domain

// Access modes reported by chapter verification.
// Anything other than demo behaves as the full (token-checked) case.
const (
	ModeDemo    = "demo"
	ModeFull    = "full"
	ModeInvalid = "invalid"
)

// DemoChapter is the only chapter readable without a token.
const DemoChapter = 1

// Verification is the outcome of a single chapter access check.
// It is derived fresh on every call and never cached.
type Verification struct {
	Valid    bool
	Mode     string
	Username string
}
