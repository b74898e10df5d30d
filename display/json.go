package display

import (
	"encoding/json"
	"os"

	"golang.org/x/term"
)

// MarshalJSON marshals v pretty-printed when stdout is a terminal and
// compact when it is piped, so scripted consumers get line-oriented JSON.
func MarshalJSON(v interface{}) ([]byte, error) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
