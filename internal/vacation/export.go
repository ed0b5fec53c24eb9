package vacation

import (
	"context"
	"fmt"
	"io"

	"github.com/frahmantamala/vacation-management/internal"
	"github.com/frahmantamala/vacation-management/internal/user"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Requests"

var exportHeader = []string{"ID", "User", "Email", "Start Date", "End Date", "Days", "Status", "Description"}

// Export writes an XLSX workbook of vacation requests to w. With a managerID
// of zero every request is exported, otherwise those of the manager's direct
// reports only.
func (s *Service) Export(ctx context.Context, w io.Writer, managerID int64) error {
	var (
		requests []*VacationRequest
		err      error
	)
	if managerID > 0 {
		requests, err = s.RequestsForManager(ctx, managerID)
	} else {
		requests, err = s.ListRequests(ctx)
	}
	if err != nil {
		return err
	}

	owners := make(map[int64]*user.User)
	for _, r := range requests {
		if _, seen := owners[r.UserID]; seen {
			continue
		}
		u, err := s.users.GetByID(ctx, r.UserID)
		if err != nil && !internal.IsNotFound(err) {
			return err
		}
		owners[r.UserID] = u
	}

	f, err := buildWorkbook(requests, owners)
	if err != nil {
		return fmt.Errorf("build export workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("failed to close export workbook", "error", cerr)
		}
	}()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write export workbook: %w", err)
	}
	s.logger.Info("vacation requests exported", "rows", len(requests), "manager_id", managerID)
	return nil
}

func buildWorkbook(requests []*VacationRequest, owners map[int64]*user.User) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	for i, h := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
	if err := f.SetCellStyle(exportSheet, "A1", last, bold); err != nil {
		return nil, err
	}

	for i, r := range requests {
		name, email := "", ""
		if u := owners[r.UserID]; u != nil {
			name, email = u.Name, u.Email
		}
		row := []interface{}{
			r.ID, name, email, r.StartDate.String(), r.EndDate.String(), r.Days(), string(r.Status), r.Description,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(exportSheet, "B", "C", 28); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "H", "H", 48); err != nil {
		return nil, err
	}
	return f, nil
}
