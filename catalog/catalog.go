// Package catalog holds the static registry of unlockable artifacts.
// Loaded once at process start, read-only afterwards.
package catalog

import (
	"github.com/Gymnott1/mpesa-simple-node-server/models"
)

var artifacts = []models.Artifact{
	{ID: 1, Name: "Single Track", Cost: 20, Image: "🎵"},
	{ID: 2, Name: "Full Album", Cost: 150, Image: "💿"},
	{ID: 3, Name: "Concert Ticket", Cost: 400, Image: "🎤"},
	{ID: 4, Name: "Backstage Pass", Cost: 1000, Image: "🎟️"},
}

var byID = func() map[int]models.Artifact {
	m := make(map[int]models.Artifact, len(artifacts))
	for _, a := range artifacts {
		m[a.ID] = a
	}
	return m
}()

// All returns the full catalog in display order.
func All() []models.Artifact {
	out := make([]models.Artifact, len(artifacts))
	copy(out, artifacts)
	return out
}

// Find resolves an artifact id.
func Find(id int) (models.Artifact, bool) {
	a, ok := byID[id]
	return a, ok
}
