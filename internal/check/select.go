package check

import (
	"strings"

	"github.com/shinji-kodama/sqlfluff-check/internal/model"
)

// SelectSQLFiles returns the arguments that end in ".sql", preserving
// order. Matching is case-sensitive and purely textual; existence is
// checked by later stages. Other arguments are dropped without comment.
func SelectSQLFiles(args []string) []string {
	var files []string
	for _, arg := range args {
		if strings.HasSuffix(arg, model.SQLSuffix) {
			files = append(files, arg)
		}
	}
	return files
}
