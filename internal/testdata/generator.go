// Package testdata generates sample snapshots for tests and the demo manifest.
package testdata

import (
	"fmt"
	"math/rand"

	"github.com/jask/catswitch/internal/category"
	"github.com/jask/catswitch/internal/index"
)

// App is a well-known application with the category a user would expect.
type App struct {
	Name     string
	ID       string
	Category category.Category
}

// KnownApps is a realistic desktop snapshot.
var KnownApps = []App{
	{"Terminal", "com.apple.Terminal", category.Development},
	{"Xcode", "com.apple.dt.Xcode", category.Development},
	{"Visual Studio Code", "com.microsoft.VSCode", category.Development},
	{"Slack", "com.tinyspeck.slackmacgap", category.Communication},
	{"Zoom", "us.zoom.xos", category.Communication},
	{"Spotify", "com.spotify.client", category.Media},
	{"Music", "com.apple.Music", category.Media},
	{"Notes", "com.apple.Notes", category.Productivity},
	{"Microsoft Word", "com.microsoft.Word", category.Productivity},
	{"Figma", "com.figma.Desktop", category.Creativity},
	{"1Password", "com.1password.1password", category.Utilities},
	{"Anki", "net.ankiweb.dtop", category.Education},
	{"Banktivity", "com.iggsoftware.banktivity", category.Finance},
	{"Steam", "com.valvesoftware.steam", category.Gaming},
	{"Weather", "com.apple.weather", category.Lifestyle},
}

// Records returns KnownApps as index records.
func Records() []index.Record {
	out := make([]index.Record, len(KnownApps))
	for i, a := range KnownApps {
		out[i] = index.Record{ID: a.ID, Name: a.Name, Icon: a.ID + ".icns", Category: a.Category}
	}
	return out
}

// RandomRecords returns n records with random categories. Only maxCats
// distinct categories are used, so some categories stay empty.
func RandomRecords(r *rand.Rand, n, maxCats int) []index.Record {
	if maxCats <= 0 || maxCats > category.Count {
		maxCats = category.Count
	}
	pool := r.Perm(category.Count)[:maxCats]
	out := make([]index.Record, n)
	for i := range out {
		id := fmt.Sprintf("app.%d.%d", i, r.Intn(1000))
		out[i] = index.Record{
			ID:       id,
			Name:     fmt.Sprintf("App %d", i),
			Category: category.Category(pool[r.Intn(len(pool))]),
		}
	}
	return out
}

// RandomIndex builds an index from RandomRecords.
func RandomIndex(r *rand.Rand, n, maxCats int) *index.Index {
	return index.Build(RandomRecords(r, n, maxCats))
}
