// Package update checks the GitHub release feed for a newer SkyCrypt+ release.
//
// This package handles:
//   - Querying the GitHub API for the latest release, bounded by a 5s timeout
//   - Comparing versions numerically (1.10.0 is newer than 1.9.0)
//   - Running the check in the background and reporting the outcome once
//
// The package is isolated from UI concerns. It returns structured data
// (UpdateInfo) and a Pending handle that the UI can observe however it wants.
// Failures never escape as panics: they are logged and read as "no update".
//
// Example usage:
//
//	checker := update.NewChecker(update.DefaultRepoOwner, update.DefaultRepoName)
//	pending := checker.CheckAsync(ctx, currentVersion, nil)
//	if info, ok := <-pending.Updates(); ok {
//	    // show the notification
//	}
package update
