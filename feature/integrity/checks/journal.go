package checks

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cdalton713/easier-blob-storage/core/journal"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JournalReport compares the journal table with the Entry model.
type JournalReport struct {
	Table          string   `json:"table"`
	Matched        bool     `json:"matched"`
	MissingColumns []string `json:"missing_columns"`
}

// CheckJournal verifies that the journal table exists and carries every column the
// Entry model maps.
func CheckJournal(db *gorm.DB) (*JournalReport, error) {
	if db == nil {
		return nil, errors.New("database connection is nil")
	}

	entry := &journal.Entry{}
	report := &JournalReport{
		Table:          entry.TableName(),
		MissingColumns: []string{},
	}

	s, err := schema.Parse(entry, &sync.Map{}, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("failed to parse journal schema: %w", err)
	}

	migrator := db.Migrator()
	if !migrator.HasTable(entry) {
		report.MissingColumns = append(report.MissingColumns, s.DBNames...)
		return report, nil
	}

	for _, col := range s.DBNames {
		if !migrator.HasColumn(entry, col) {
			report.MissingColumns = append(report.MissingColumns, col)
		}
	}

	report.Matched = len(report.MissingColumns) == 0
	return report, nil
}
