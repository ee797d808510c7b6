// Package config resolves the large-file byte limit from a project's
// sqlfluff configuration.
//
// Two file formats are understood:
//
//   - .sqlfluff (and any other non-TOML path): INI, parsed with
//     gopkg.in/ini.v1, limit at [sqlfluff] large_file_skip_byte_limit
//   - pyproject.toml (any *.toml path): TOML, parsed with
//     github.com/pelletier/go-toml/v2, limit at
//     [tool.sqlfluff.core] large_file_skip_byte_limit
//
// Resolution never fails. A missing file, an unreadable or malformed file,
// a missing section or key, or a non-integer value all yield
// model.DefaultLargeFileLimit. Files are read through afero so callers
// and tests decide which filesystem backs the lookup.
package config
