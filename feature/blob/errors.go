package blob

import "errors"

var (
	// ErrMissingReference means no handle, bound handle, path or signed URL was given.
	ErrMissingReference = errors.New("blob path or sas url required")
	// ErrInvalidAction means a transfer was asked for something other than copy or move.
	ErrInvalidAction = errors.New(`invalid action, use "copy" or "move"`)
	// ErrSelfCopy means source and destination name the same blob in the same container.
	ErrSelfCopy = errors.New("source and destination are the same blob in the same container")
	// ErrCopyFailed means the server-side copy ended in a state other than success.
	ErrCopyFailed = errors.New("server-side copy did not succeed")
	// ErrUnsafePath means a blob name would be written outside the download folder.
	ErrUnsafePath = errors.New("blob name escapes the download folder")
)
