// Command bandsteer analyzes 802.11 band-steering captures and manages the
// on-disk registry of past analyses.
package main

import (
	"log/slog"
	"os"

	"github.com/steeraudit/bandsteer/cmd/bandsteer/commands"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	commands.Execute()
}
