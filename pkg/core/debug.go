package core

// DebugMode controls whether new trees double-check renders.
// When true, every render runs twice on independent duplicates and a
// mismatch halts the pass as a non-deterministic render.
var DebugMode = false

// SetDebugMode enables or disables debug mode for the engine.
func SetDebugMode(debug bool) {
	DebugMode = debug
}
