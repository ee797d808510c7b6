// Package docker runs sqlfluff inside a container instead of as a local
// process, for projects that pin their linter to an image such as
// sqlfluff/sqlfluff.
//
// This package handles:
//   - Docker client initialization with automatic socket detection
//     (Linux, macOS, Windows)
//   - Pulling the linter image on first use
//   - One short-lived container per file and mode, with the working
//     directory bind-mounted so "format" rewrites land on the host
//   - Labelling those containers so leftovers can be identified
//
// The package uses github.com/docker/docker/client as the underlying
// Docker SDK, with version negotiation enabled for broad compatibility.
package docker
