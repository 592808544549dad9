package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes used by the list filters. Single-column
// indexes are declared on the models.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// GET /tasks?project_id=&status=
		{"tasks", "idx_tasks_project_status", "project_id, status"},
		{"tasks", "idx_tasks_assignee_status", "assignee_id, status"},

		// GET /projects?team_id=&status=
		{"projects", "idx_projects_team_status", "team_id, status"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Debug("created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}
