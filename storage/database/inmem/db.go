package inmemdb

import (
	"strings"
	"sync"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/announcement"
	"github.com/theadruss/Clix-App/core/club"
	"github.com/theadruss/Clix-App/core/event"
	"github.com/theadruss/Clix-App/core/social"
	"github.com/theadruss/Clix-App/core/user"
	"github.com/theadruss/Clix-App/core/venue"
	"github.com/theadruss/Clix-App/core/volunteer"
)

type (
	// DB is an in-memory database. Every table is guarded by its own lock,
	// read-modify-write operations hold the write lock for their whole duration.
	DB struct {
		user         *userTable
		club         *clubTable
		venue        *venueTable
		event        *eventTable
		social       *socialTable
		volunteer    *volunteerTable
		announcement *announcementTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	clubTable struct {
		sync.RWMutex
		table map[string]*club.Club
	}

	venueTable struct {
		sync.RWMutex
		table map[string]*venue.Venue
	}

	eventTable struct {
		sync.RWMutex
		table         map[string]*event.Event
		registrations []event.Registration
	}

	socialTable struct {
		sync.RWMutex
		posts map[string]*social.Post
		media map[string]*social.MediaPost
	}

	volunteerTable struct {
		sync.RWMutex
		table map[string]*volunteer.Application
	}

	announcementTable struct {
		sync.RWMutex
		table map[string]*announcement.Announcement
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		club:         &clubTable{table: make(map[string]*club.Club)},
		venue:        &venueTable{table: make(map[string]*venue.Venue)},
		event:        &eventTable{table: make(map[string]*event.Event)},
		social:       &socialTable{posts: make(map[string]*social.Post), media: make(map[string]*social.MediaPost)},
		volunteer:    &volunteerTable{table: make(map[string]*volunteer.Application)},
		announcement: &announcementTable{table: make(map[string]*announcement.Announcement)},
	}
	return db, nil
}

func cloneStrings(s []string) []string {
	res := make([]string, len(s))
	copy(res, s)
	return res
}

// lessFunc returns a less function following the first known ordering, or fallback.
// cmps maps a column name to a three-way comparison of items i and j.
func lessFunc(ordering []core.DBOrdering, cmps map[string]func(i, j int) int, fallback func(i, j int) bool) func(i, j int) bool {
	for _, ord := range ordering {
		if cmp, ok := cmps[ord.Field]; ok {
			asc := ord.Ascending
			return func(i, j int) bool {
				if asc {
					return cmp(i, j) < 0
				}
				return cmp(i, j) > 0
			}
		}
	}
	return fallback
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
