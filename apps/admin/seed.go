package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/announcement"
	"github.com/theadruss/Clix-App/core/club"
	"github.com/theadruss/Clix-App/core/event"
	"github.com/theadruss/Clix-App/core/social"
	"github.com/theadruss/Clix-App/core/user"
	"github.com/theadruss/Clix-App/core/venue"
)

var errAlreadySeeded = errors.New("the demo campus is already loaded")

const avatarURL = "https://api.dicebear.com/7.x/avataaars/svg?seed="

var demoVenues = []venue.Venue{
	{ID: "v1", Name: "Main Auditorium", Capacity: 1000, Features: []string{"Stage", "Sound System", "AC"}},
	{ID: "v2", Name: "Seminar Hall A", Capacity: 200, Features: []string{"Projector", "Whiteboard"}},
	{ID: "v3", Name: "Open Air Theatre", Capacity: 2000, Features: []string{"Outdoor", "Lighting"}},
	{ID: "v4", Name: "Computer Lab 3", Capacity: 60, Features: []string{"Computers", "High-speed Internet"}},
}

var demoClubs = []club.Club{
	{
		ID: "c1", Name: "Coding Club", AdminID: "u2",
		Description: "Building the future, one line of code at a time.",
		Logo:        "https://api.dicebear.com/7.x/identicon/svg?seed=coding",
		Banner:      "https://picsum.photos/800/200?random=20",
	},
	{
		ID: "c2", Name: "Music Society", AdminID: "u4",
		Description: "Orchestrating harmony on campus.",
		Logo:        "https://api.dicebear.com/7.x/identicon/svg?seed=music",
		Banner:      "https://picsum.photos/800/200?random=21",
	},
	{
		ID: "c3", Name: "Debating Society", AdminID: "u5",
		Description: "Voices that matter. Arguments that win.",
		Logo:        "https://api.dicebear.com/7.x/identicon/svg?seed=debate",
		Banner:      "https://picsum.photos/800/200?random=22",
	},
	{
		ID: "c4", Name: "Robotics Club", AdminID: "u6",
		Description: "Automating the world.",
		Logo:        "https://api.dicebear.com/7.x/identicon/svg?seed=robot",
		Banner:      "https://picsum.photos/800/200?random=23",
	},
}

var demoUsers = []user.User{
	{
		ID: "u1", Name: "Alex Student", Email: "alex@college.edu", Role: user.RoleStudent,
		Avatar:        avatarURL + "Alex",
		Bio:           "CS Major. Coffee enthusiast. Always looking for the next hackathon.",
		JoinDate:      "2023-08-15",
		JoinedClubIDs: []string{"c1"},
		Year:          "3rd Year",
		Branch:        "CSE",
	},
	{
		ID: "u2", Name: "Coding Club Admin", Email: "coding@college.edu", Role: user.RoleClubAdmin, ClubID: "c1",
		Avatar:        avatarURL + "Admin",
		Bio:           "Leading the tech revolution on campus.",
		JoinDate:      "2022-05-10",
		JoinedClubIDs: []string{"c1"},
		Year:          "4th Year",
		Branch:        "CSE",
	},
	{
		ID: "u3", Name: "Dean of Affairs", Email: "dean@college.edu", Role: user.RoleCollegeAdmin,
		Avatar:        avatarURL + "Dean",
		Bio:           "Overseeing campus activities and student welfare.",
		JoinDate:      "2020-01-01",
		JoinedClubIDs: []string{},
	},
	{ID: "u4", Name: "Music Society Admin", Email: "music@college.edu", Role: user.RoleClubAdmin, ClubID: "c2", Avatar: avatarURL + "music", JoinedClubIDs: []string{"c2"}},
	{ID: "u5", Name: "Debating Society Admin", Email: "debate@college.edu", Role: user.RoleClubAdmin, ClubID: "c3", Avatar: avatarURL + "debate", JoinedClubIDs: []string{"c3"}},
	{ID: "u6", Name: "Robotics Club Admin", Email: "robotics@college.edu", Role: user.RoleClubAdmin, ClubID: "c4", Avatar: avatarURL + "robot", JoinedClubIDs: []string{"c4"}},
}

var demoEvents = []event.Event{
	{
		ID: "e1", Title: "Hackathon 2024", Organizer: "Coding Club", ClubID: "c1",
		Description: "A 24-hour coding marathon to solve real-world problems.",
		Date:        "2024-05-15", Time: "09:00", VenueID: "v1", Status: event.StatusApproved,
		Capacity: 200, RegisteredCount: 150,
		Image:            "https://picsum.photos/800/400?random=10",
		Tags:             []string{"Tech", "Coding", "Competition"},
		VolunteersNeeded: true,
	},
	{
		ID: "e2", Title: "Music Fest", Organizer: "Music Society", ClubID: "c2",
		Description: "An evening of classical and modern music performances.",
		Date:        "2024-05-20", Time: "18:00", VenueID: "v3", Status: event.StatusApproved,
		Capacity: 1000, RegisteredCount: 850, Price: 150,
		Image:            "https://picsum.photos/800/400?random=11",
		Tags:             []string{"Music", "Art", "Fun"},
		VolunteersNeeded: true,
	},
	{
		ID: "e3", Title: "AI Workshop", Organizer: "Coding Club", ClubID: "c1",
		Description: "Introduction to Generative AI and LLMs.",
		Date:        "2024-06-01", Time: "14:00", VenueID: "v2", Status: event.StatusPending,
		Capacity: 50, Price: 50,
		Image: "https://picsum.photos/800/400?random=12",
		Tags:  []string{"Workshop", "AI", "Learning"},
	},
}

func demoPosts(now time.Time) []social.Post {
	return []social.Post{
		{
			ID: "p1", ClubID: "c1", UserID: "u2", UserName: "Coding Club Admin", UserAvatar: avatarURL + "Admin",
			Content:   "Welcome to the new semester! We have some great workshops planned. What topics are you interested in?",
			Timestamp: now.Add(-2 * time.Hour),
			LikedBy:   []string{"u1", "u3", "u4", "u5", "u6"},
			Comments: []social.Comment{
				{ID: "c1", UserID: "u1", UserName: "Alex", Text: "React Native please!", Timestamp: now.Add(-time.Hour)},
			},
		},
		{
			ID: "p2", ClubID: "c1", UserID: "u1", UserName: "Alex Student", UserAvatar: avatarURL + "Alex",
			Content:   "I would love a session on React and Tailwind CSS!",
			Timestamp: now.Add(-time.Hour),
			LikedBy:   []string{"u2"},
			Comments:  []social.Comment{},
		},
		{
			ID: "p3", ClubID: "c2", UserID: "u4", UserName: "Music Society Admin", UserAvatar: avatarURL + "music",
			Content:   "Auditions for the annual fest will begin next week. Get your instruments ready!",
			Timestamp: now.Add(-5 * time.Hour),
			LikedBy:   []string{"u1", "u5"},
			Comments:  []social.Comment{},
		},
	}
}

var demoMedia = []social.MediaPost{
	{
		ID: "m1", ClubID: "c1", EventID: "e1",
		ImageURL: "https://picsum.photos/800/600?random=50",
		Caption:  "Winners of Hackathon 2023! 🏆",
		LikedBy:  []string{"u1", "u3"},
		Comments: []social.Comment{
			{ID: "cm1", UserID: "u1", UserName: "Alex", Text: "Great event!", Timestamp: time.Date(2023, 5, 16, 0, 0, 0, 0, time.UTC)},
		},
	},
	{
		ID: "m2", ClubID: "c2", EventID: "e2",
		ImageURL: "https://picsum.photos/800/600?random=51",
		Caption:  "Jamming session at the OAT 🎸",
		LikedBy:  []string{"u1", "u2", "u5"},
		Comments: []social.Comment{},
	},
}

var demoAnnouncements = []announcement.Announcement{
	{
		ID: "a1", ClubID: "c1", Date: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		Content: "General Body Meeting this Friday at 5 PM in the Main Auditorium. Attendance is mandatory for core members.",
	},
	{
		ID: "a2", ClubID: "c2", Date: time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC),
		Content: "Practice sessions for the upcoming fest have been rescheduled to 6 PM.",
	},
}

// seed loads the demo campus. Every demo account gets pwd as password.
func (cli *commandLine) seed(pwd string) error {
	ctx := context.Background()
	if _, err := cli.repos.Venues.GetVenueByID(ctx, demoVenues[0].ID); err == nil {
		return errAlreadySeeded
	} else if !core.IsNotFound(err) {
		return err
	}
	now := time.Now().UTC()

	for _, v := range demoVenues {
		if _, err := cli.repos.Venues.CreateVenue(ctx, v); err != nil {
			return errors.Wrapf(err, "creating venue %s", v.ID)
		}
	}
	for _, c := range demoClubs {
		if _, err := cli.repos.Clubs.CreateClub(ctx, c); err != nil {
			return errors.Wrapf(err, "creating club %s", c.ID)
		}
	}
	for _, usr := range demoUsers {
		usr.IsActive = true
		usr.CreatedAt = now
		usr.UpdatedAt = now
		if usr.JoinDate == "" {
			usr.JoinDate = now.Format("2006-01-02")
		}
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		if _, err := cli.repos.Users.CreateUser(ctx, usr); err != nil {
			return errors.Wrapf(err, "creating user %s", usr.ID)
		}
	}
	for _, e := range demoEvents {
		e.Feedback = []event.Feedback{}
		e.Winners = []event.Winner{}
		e.CreatedAt = now
		if _, err := cli.repos.Events.CreateEvent(ctx, e); err != nil {
			return errors.Wrapf(err, "creating event %s", e.ID)
		}
	}
	for _, p := range demoPosts(now) {
		p.Version = 1
		if _, err := cli.repos.Social.CreatePost(ctx, p); err != nil {
			return errors.Wrapf(err, "creating post %s", p.ID)
		}
	}
	for _, m := range demoMedia {
		m.Version = 1
		m.CreatedAt = now
		if _, err := cli.repos.Social.CreateMedia(ctx, m); err != nil {
			return errors.Wrapf(err, "creating media %s", m.ID)
		}
	}
	for _, a := range demoAnnouncements {
		if _, err := cli.repos.Announcements.CreateAnnouncement(ctx, a); err != nil {
			return errors.Wrapf(err, "creating announcement %s", a.ID)
		}
	}
	return nil
}
