package docker

import (
	"github.com/shinji-kodama/sqlfluff-check/internal/lint"
)

// Label key constants identify the short-lived linter containers started
// by this tool. All keys share the "sqlfluff-check." prefix to avoid
// collisions with labels set by other tools.
const (
	// LabelPrefix is the common prefix for all sqlfluff-check labels.
	LabelPrefix = "sqlfluff-check."

	// LabelManagedBy identifies containers started by sqlfluff-check.
	// Key: "sqlfluff-check.managed-by", Value: always "sqlfluff-check".
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelMode stores the sqlfluff subcommand the container runs.
	// Key: "sqlfluff-check.mode", Value: "parse" or "format".
	LabelMode = LabelPrefix + "mode"

	// LabelFile stores the host path of the file being checked, as given
	// on the command line.
	LabelFile = LabelPrefix + "file"
)

// ManagedByValue is the constant value for the LabelManagedBy label.
const ManagedByValue = "sqlfluff-check"

// BuildLabels constructs the label map for one linter container.
// A container left behind after a crash can be found with
//
//	docker ps -a --filter label=sqlfluff-check.managed-by=sqlfluff-check
func BuildLabels(mode lint.Mode, path string) map[string]string {
	return map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelMode:      mode.String(),
		LabelFile:      path,
	}
}
