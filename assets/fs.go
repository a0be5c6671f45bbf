// Package assets holds the files embedded in the binaries: SQL migrations, email templates and the common passwords list.
package assets

import "embed"

//go:embed migrations/*.sql templates/email/* common-passwords.txt.gz
var FS embed.FS
