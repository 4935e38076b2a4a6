package ports

import (
	"context"
)

// GitInfo is the repository context captured when a session starts.
type GitInfo struct {
	Branch     string
	Commit     string
	Repository string
}

// GitDetector defines the interface for git context detection.
// This is a driven port (implemented by adapters).
type GitDetector interface {
	// Detect looks up the repository containing workingDir.
	Detect(ctx context.Context, workingDir string) (*GitInfo, error)
}
