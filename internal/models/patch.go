package models

import "strings"

// buildToPatch maps internal game build prefixes to the player-facing patch
// label. Static lookup data, extended when new patches ship.
var buildToPatch = map[string]string{
	"Version 14.23": "14.23",
	"Version 14.24": "14.24",
	"Version 15.1":  "25.S1.1",
	"Version 15.2":  "25.S1.2",
	"Version 15.3":  "25.S1.3",
	"Version 15.4":  "25.S1.4",
	"Version 15.5":  "25.S1.5",
	"Version 15.6":  "25.S1.6",
}

// GamePatch returns the patch label for a full game_version string, or ""
// when the build is not in the lookup table. game_version strings look like
// "Version 15.2.684.9340 (Jan 21 2025/...)".
func GamePatch(gameVersion string) string {
	for prefix, patch := range buildToPatch {
		if strings.HasPrefix(gameVersion, prefix+".") || gameVersion == prefix {
			return patch
		}
	}
	return ""
}
