package ir

// Version constants for the digest format and the tool.
const (
	// DigestVersion is bumped whenever the digest input layout changes.
	DigestVersion = "1"

	// ToolVersion is the reelcheck release version.
	ToolVersion = "0.1.0"
)
