// Package dump serializes a database into a replayable SQL script and
// restores it again. Dumps can be written to local files, S3 objects
// or a git-backed vault that keeps every backup as a commit with
// tagged snapshots and hard-reset recovery.
package dump
