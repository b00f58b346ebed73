package reporting

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gauntlet-dev/gauntlet/internal/models"
)

// WriteJSON streams the outcome as indented JSON.
func WriteJSON(w io.Writer, outcome *models.RunOutcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcome); err != nil {
		return fmt.Errorf("encoding outcome: %w", err)
	}
	return nil
}
