// Package retry re-runs file-system mutations that fail for transient
// reasons, such as a file briefly held open by an indexer or a network
// mount that is momentarily busy.
//
// # Example Usage
//
//	executor := retry.NewExecutor(retry.NewFileSystemClassifier(), retry.NewExponentialBackoff(3))
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return fsys.Rename(oldPath, newPath)
//	})
//
// Errors the Classifier does not recognize are returned after the first
// attempt.
package retry
