package check

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"

	"github.com/shinji-kodama/sqlfluff-check/internal/model"
)

// CheckSizes is the size gate. It records one failure per file whose size
// is strictly greater than limit; a file exactly at the limit passes.
//
// A non-positive limit disables the gate. Files that do not exist are
// skipped here and reported as "File not found" by the check stages.
func CheckSizes(fsys afero.Fs, files []string, limit int64) (*model.StageReport, error) {
	report := model.NewStageReport(model.StageSize)
	if limit <= 0 {
		return report, nil
	}

	for _, path := range files {
		info, err := fsys.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		if info.Size() > limit {
			report.Add(&model.FileError{
				Path:   path,
				Reason: model.ReasonTooLarge,
				Size:   info.Size(),
				Limit:  limit,
			})
		}
	}

	return report, nil
}
