package schema

import (
	"boardengine/internal/model"

	"gorm.io/datatypes"
)

// DefaultColumns returns the seed column set for a built-in board type.
// Custom boards start empty and grow columns through the API.
func DefaultColumns(boardType model.BoardType) []model.BoardColumn {
	switch boardType {
	case model.BoardTypeRoutes:
		return buildColumns(boardType, []columnSeed{
			{"name", "Name", model.ColumnText, nil},
			{"status", "Status", model.ColumnStatus, statusLabels()},
			{"inspector", "Inspector", model.ColumnPerson, nil},
			{"date", "Date", model.ColumnDate, nil},
			{"companies", "Companies", model.ColumnCompany, nil},
			{"service_type", "Service Type", model.ColumnServiceType, nil},
			{"updates", "Updates", model.ColumnUpdates, nil},
		})
	case model.BoardTypeCompanies:
		return buildColumns(boardType, []columnSeed{
			{"name", "Name", model.ColumnText, nil},
			{"status", "Status", model.ColumnStatus, statusLabels()},
			{"address", "Address", model.ColumnCompanyAddress, nil},
			{"location", "Location", model.ColumnLocation, nil},
			{"phone", "Phone", model.ColumnPhone, nil},
			{"service_type", "Service Type", model.ColumnServiceType, nil},
			{"active", "Active", model.ColumnCheckbox, nil},
		})
	case model.BoardTypeInspectors:
		return buildColumns(boardType, []columnSeed{
			{"name", "Name", model.ColumnText, nil},
			{"status", "Status", model.ColumnStatus, statusLabels()},
			{"phone", "Phone", model.ColumnPhone, nil},
			{"assigned_routes", "Assigned Routes", model.ColumnRoute, nil},
			{"updates", "Updates", model.ColumnUpdates, nil},
		})
	case model.BoardTypeInspections:
		return buildColumns(boardType, []columnSeed{
			{"name", "Name", model.ColumnText, nil},
			{"status", "Status", model.ColumnStatus, statusLabels()},
			{"inspector", "Inspector", model.ColumnPerson, nil},
			{"company", "Company", model.ColumnCompany, nil},
			{"scheduled", "Scheduled", model.ColumnDateRange, nil},
			{"report", "Report", model.ColumnFiles, nil},
			{"actions", "Actions", model.ColumnActions, nil},
		})
	}
	return nil
}

type columnSeed struct {
	id     string
	name   string
	colType model.ColumnType
	config map[string]any
}

func buildColumns(boardType model.BoardType, seeds []columnSeed) []model.BoardColumn {
	cols := make([]model.BoardColumn, len(seeds))
	for i, s := range seeds {
		cols[i] = model.BoardColumn{
			BoardType:  boardType,
			ColumnID:   s.id,
			ColumnName: s.name,
			ColumnType: s.colType,
			IsVisible:  true,
			Position:   i,
			Width:      150,
			Config:     datatypes.JSONMap(s.config),
		}
	}
	return cols
}

func statusLabels() map[string]any {
	return map[string]any{
		"labels": map[string]any{
			model.StatusDefault:     map[string]any{"label": "Not Started", "color": "#c4c4c4"},
			model.StatusPending:     map[string]any{"label": "Pending", "color": "#fdab3d"},
			model.StatusWorkingOnIt: map[string]any{"label": "Working on it", "color": "#579bfc"},
			model.StatusStuck:       map[string]any{"label": "Stuck", "color": "#e2445c"},
			model.StatusDone:        map[string]any{"label": "Done", "color": "#00c875"},
		},
	}
}
