package journal

var (
	// J is a globally accessible Journal. It starts being NilJournal, and
	// early during startup it is reset to whichever Journal is configured.
	J Journal = NilJournal() // nolint
)
