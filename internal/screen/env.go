package screen

import (
	"github.com/sirupsen/logrus"

	"github.com/abhisek/ipquiz/internal/catalog"
	"github.com/abhisek/ipquiz/internal/session"
	"github.com/abhisek/ipquiz/internal/store"
)

// Env carries the collaborators shared by every screen. Events may be nil
// when the backend keeps no history.
type Env struct {
	Catalog *catalog.Catalog
	Gate    *catalog.Gate
	Session *session.Session
	Events  store.EventRepo
	Log     logrus.FieldLogger
}

// SyncBank points the session at the catalog's current bank so edits made
// in admin mode are visible to the next pick.
func (e *Env) SyncBank() {
	e.Session.SetBank(e.Catalog.Bank())
}
