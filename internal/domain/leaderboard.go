package domain

import "sort"

// LeaderboardSize is the number of entries returned by BuildLeaderboard.
const LeaderboardSize = 10

// LeaderboardEntry is a derived ranking row.
type LeaderboardEntry struct {
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	Points     int    `json:"points"`
	Activities int    `json:"activities"`
	River      River  `json:"river"`
}

// BuildLeaderboard ranks users by points, highest first. Ties keep the order
// of users (registration order). The result holds at most LeaderboardSize
// entries.
func BuildLeaderboard(users []User, activities []UserActivity) []LeaderboardEntry {
	counts := make(map[string]int, len(users))
	for _, a := range activities {
		counts[a.UserID]++
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, LeaderboardEntry{
			UserID:     u.ID,
			Name:       u.Name,
			Points:     u.Points,
			Activities: counts[u.ID],
			River:      u.SelectedRiver,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})

	if len(entries) > LeaderboardSize {
		entries = entries[:LeaderboardSize]
	}
	return entries
}

type sampleUser struct {
	name   string
	email  string
	role   Role
	river  River
	points int
}

var sampleUsers = []sampleUser{
	{"Ahmed Hassan", "ahmed@example.com", RoleAdult, Nile, 850},
	{"Sara Mohamed", "sara@example.com", RoleStudent, Amazon, 720},
	{"Mohamed Ali", "mohamed@example.com", RoleFarmer, Yangtze, 680},
	{"Fatma Ibrahim", "fatma@example.com", RoleStudent, Nile, 590},
	{"Omar Khaled", "omar@example.com", RoleAdult, Amazon, 520},
}

// SampleUsers builds the demo leaderboard population. newID supplies user ids.
// Sample users keep level 1 regardless of points: their points are set
// directly rather than earned through activities.
func SampleUsers(newID func() string) []User {
	out := make([]User, 0, len(sampleUsers))
	for _, s := range sampleUsers {
		u := NewUser(newID(), s.name, s.email, s.role, s.river)
		u.Points = s.points
		out = append(out, u)
	}
	return out
}
