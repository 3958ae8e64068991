// Package journal keeps an optional audit trail of blob operations.
//
// Every mutating facade call (upload, download, delete, copy, move, metadata changes and
// imports) can be recorded as an Entry in the transfer_journal table. The journal is
// backed by GORM and works with any dialect core/database can open.
//
// Journaling is best effort: the facade logs a failed Record and carries on, so an
// unavailable database never fails a blob operation.
//
// # Usage
//
//	j, err := journal.New(db)
//	client, err := blob.NewFromConfig(cfg.Storage, blob.WithJournal(j))
//	entries, err := j.Recent(ctx, 20)
package journal
