package database

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/announcement"
	"github.com/theadruss/Clix-App/core/club"
	"github.com/theadruss/Clix-App/core/event"
	"github.com/theadruss/Clix-App/core/social"
	"github.com/theadruss/Clix-App/core/user"
	"github.com/theadruss/Clix-App/core/venue"
	"github.com/theadruss/Clix-App/core/volunteer"
	inmemdb "github.com/theadruss/Clix-App/storage/database/inmem"
	pgrepos "github.com/theadruss/Clix-App/storage/database/postgres"
)

// engines
const (
	EnginePostgres = "postgres"
	EngineInmem    = "inmem"
)

// Repositories groups the repositories of one storage engine.
type Repositories struct {
	Users         user.Repository
	Clubs         club.Repository
	Venues        venue.Repository
	Events        event.Repository
	Volunteers    volunteer.Repository
	Social        social.Repository
	Announcements announcement.Repository

	close func() error
}

// Close releases the underlying database.
func (r Repositories) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

func NewInmemRepositories(db *inmemdb.DB) Repositories {
	return Repositories{
		Users:         inmemdb.NewUserRepository(db),
		Clubs:         inmemdb.NewClubRepository(db),
		Venues:        inmemdb.NewVenueRepository(db),
		Events:        inmemdb.NewEventRepository(db),
		Volunteers:    inmemdb.NewVolunteerRepository(db),
		Social:        inmemdb.NewSocialRepository(db),
		Announcements: inmemdb.NewAnnouncementRepository(db),
	}
}

func NewPostgresRepositories(db *sqlx.DB) Repositories {
	return Repositories{
		Users:         pgrepos.NewUserRepository(db),
		Clubs:         pgrepos.NewClubRepository(db),
		Venues:        pgrepos.NewVenueRepository(db),
		Events:        pgrepos.NewEventRepository(db),
		Volunteers:    pgrepos.NewVolunteerRepository(db),
		Social:        pgrepos.NewSocialRepository(db),
		Announcements: pgrepos.NewAnnouncementRepository(db),
		close:         db.Close,
	}
}

// Setup opens the storage engine selected by conf.Database.Engine.
// The postgres database is created and migrated when needed.
func Setup(conf *core.Config) (Repositories, error) {
	switch conf.Database.Engine {
	case EngineInmem:
		db, err := inmemdb.Open()
		if err != nil {
			return Repositories{}, errors.Wrap(err, "opening in-memory database")
		}
		return NewInmemRepositories(db), nil

	case EnginePostgres, "":
		if err := CreateIfNotExist(conf); err != nil {
			return Repositories{}, errors.Wrap(err, "creating database")
		}
		db, err := Open(conf)
		if err != nil {
			return Repositories{}, err
		}
		if err = Migrate(db.DB); err != nil {
			_ = db.Close()
			return Repositories{}, errors.Wrap(err, "migrating database")
		}
		return NewPostgresRepositories(db), nil
	}
	return Repositories{}, errors.Errorf("unknown database engine %q", conf.Database.Engine)
}
