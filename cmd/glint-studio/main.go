// Command glint-studio is the desktop studio for preparing and submitting
// images to a Glint server.
package main

import (
	"fyne.io/fyne/v2/app"
	"github.com/dixieflatline76/Glint/config"
	"github.com/dixieflatline76/Glint/ui"
	"github.com/dixieflatline76/Glint/util/log"
)

func main() {
	ok, err := acquireLock()
	if err != nil {
		log.Fatalf("Failed to acquire single-instance lock: %v", err)
	}
	if !ok {
		log.Printf("Another instance of %s Studio is already running.", config.AppName)
		return
	}
	defer releaseLock()

	studio := ui.NewStudio(app.NewWithID(config.StudioAppID))
	studio.Start()
}
