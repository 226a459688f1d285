// # internal/ui/report/json.go
package report

import (
	"encoding/json"
	"io"

	"docwatch/internal/app"
)

// WriteJSON emits the full audit result as indented JSON for machine
// consumers.
func WriteJSON(w io.Writer, result *app.AuditResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
