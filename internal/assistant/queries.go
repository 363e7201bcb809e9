package assistant

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vulkenree/fifa-tickets-app/internal/models"
)

// Queries is the fixed library of read-only operations offered to the model.
// Every function swallows database errors into an empty result after logging,
// so the orchestrator always has a value to feed back.
type Queries struct {
	db *gorm.DB
}

func NewQueries(db *gorm.DB) *Queries {
	return &Queries{db: db}
}

// TicketFilters are the optional equality/range filters for ticket lookup.
// Venue and username match as case-insensitive substrings.
type TicketFilters struct {
	Venue       string `json:"venue"`
	MatchNumber string `json:"match_number"`
	DateFrom    string `json:"date_from"`
	DateTo      string `json:"date_to"`
	Category    string `json:"category"`
	Username    string `json:"username"`
}

// TicketsByFilters returns all tickets matching the filters, joined with the
// owner's username. No filters means every ticket. No pagination.
func (q *Queries) TicketsByFilters(filters *TicketFilters) []models.TicketResponse {
	query := q.db.Model(&models.Ticket{}).Preload("User").
		Joins("JOIN users ON users.id = tickets.user_id")

	if filters != nil {
		if filters.Venue != "" {
			query = query.Where("LOWER(tickets.venue) LIKE ?", "%"+strings.ToLower(filters.Venue)+"%")
		}
		if filters.MatchNumber != "" {
			query = query.Where("tickets.match_number = ?", filters.MatchNumber)
		}
		if filters.DateFrom != "" {
			if from, err := time.Parse("2006-01-02", filters.DateFrom); err == nil {
				query = query.Where("tickets.date >= ?", from)
			}
		}
		if filters.DateTo != "" {
			if to, err := time.Parse("2006-01-02", filters.DateTo); err == nil {
				query = query.Where("tickets.date <= ?", to)
			}
		}
		if filters.Category != "" {
			query = query.Where("tickets.ticket_category = ?", filters.Category)
		}
		if filters.Username != "" {
			query = query.Where("LOWER(users.username) LIKE ?", "%"+strings.ToLower(filters.Username)+"%")
		}
	}

	var tickets []models.Ticket
	if err := query.Order("tickets.date").Find(&tickets).Error; err != nil {
		slog.Error("tickets_by_filters query failed", "error", err)
		return []models.TicketResponse{}
	}

	results := make([]models.TicketResponse, 0, len(tickets))
	for i := range tickets {
		results = append(results, tickets[i].ToResponse())
	}
	return results
}

type FriendTicketCount struct {
	Username    string `json:"username"`
	TicketCount int    `json:"ticket_count"`
}

// FriendsWithTicketsCount returns, for every user owning at least one ticket,
// their username and ticket count, ordered descending by count. Ties break on
// username so repeated calls return identical ordered output.
func (q *Queries) FriendsWithTicketsCount() []FriendTicketCount {
	var rows []FriendTicketCount
	err := q.db.Model(&models.Ticket{}).
		Select("users.username AS username, COUNT(tickets.id) AS ticket_count").
		Joins("JOIN users ON users.id = tickets.user_id").
		Group("users.username").
		Order("ticket_count DESC, users.username").
		Scan(&rows).Error
	if err != nil {
		slog.Error("friends_with_tickets_count query failed", "error", err)
		return []FriendTicketCount{}
	}
	return rows
}

type MatchAttendance struct {
	MatchNumber string `json:"match_number"`
	Date        string `json:"date"`
	Venue       string `json:"venue"`
	Attendees   int    `json:"attendees"`
	Tickets     int    `json:"tickets"`
}

// MatchesByAttendance ranks matches descending by the chosen metric:
// "users" counts distinct ticket owners, "tickets" sums quantities.
func (q *Queries) MatchesByAttendance(ranking string) []MatchAttendance {
	orderBy := "attendee_count DESC"
	if ranking == "tickets" {
		orderBy = "total_tickets DESC"
	}

	var scanned []struct {
		MatchNumber   string
		Date          time.Time
		Venue         string
		AttendeeCount int
		TotalTickets  int
	}
	err := q.db.Model(&models.Match{}).
		Select("matches.match_number, matches.date, matches.venue, COUNT(DISTINCT tickets.user_id) AS attendee_count, COALESCE(SUM(tickets.quantity), 0) AS total_tickets").
		Joins("JOIN tickets ON tickets.match_number = matches.match_number").
		Group("matches.match_number, matches.date, matches.venue").
		Order(orderBy + ", matches.match_number").
		Scan(&scanned).Error
	if err != nil {
		slog.Error("matches_by_attendance query failed", "error", err)
		return []MatchAttendance{}
	}

	rows := make([]MatchAttendance, 0, len(scanned))
	for _, s := range scanned {
		rows = append(rows, MatchAttendance{
			MatchNumber: s.MatchNumber,
			Date:        s.Date.Format("2006-01-02"),
			Venue:       s.Venue,
			Attendees:   s.AttendeeCount,
			Tickets:     s.TotalTickets,
		})
	}
	return rows
}

type MatchRecommendation struct {
	MatchNumber   string   `json:"match_number"`
	Date          string   `json:"date"`
	Venue         string   `json:"venue"`
	AttendeeCount int      `json:"attendee_count"`
	TotalTickets  int      `json:"total_tickets"`
	Attendees     []string `json:"attendees"`
}

// RecommendMatchesByFriendsAndVenue returns matches where at least one of the
// listed attendees holds a ticket (all ticketed matches when no names are
// given), intersected with the venue substring filter, annotated with the
// distinct attendee count, total tickets, and the matching attendee names.
// Ordered by attendee count, then ticket volume.
func (q *Queries) RecommendMatchesByFriendsAndVenue(usernames []string, venue string) []MatchRecommendation {
	matchQuery := q.db.Model(&models.Match{})
	if venue != "" {
		matchQuery = matchQuery.Where("LOWER(venue) LIKE ?", "%"+strings.ToLower(venue)+"%")
	}
	var matches []models.Match
	if err := matchQuery.Find(&matches).Error; err != nil {
		slog.Error("recommend_matches match lookup failed", "error", err)
		return []MatchRecommendation{}
	}

	ticketQuery := q.db.Model(&models.Ticket{}).Preload("User").
		Joins("JOIN users ON users.id = tickets.user_id")
	if len(usernames) > 0 {
		ticketQuery = ticketQuery.Where("users.username IN ?", usernames)
	}
	var tickets []models.Ticket
	if err := ticketQuery.Find(&tickets).Error; err != nil {
		slog.Error("recommend_matches ticket lookup failed", "error", err)
		return []MatchRecommendation{}
	}

	type agg struct {
		attendees map[string]bool
		tickets   int
	}
	byMatch := make(map[string]*agg)
	for i := range tickets {
		t := &tickets[i]
		a, ok := byMatch[t.MatchNumber]
		if !ok {
			a = &agg{attendees: make(map[string]bool)}
			byMatch[t.MatchNumber] = a
		}
		a.attendees[t.User.Username] = true
		a.tickets += t.Quantity
	}

	results := make([]MatchRecommendation, 0, len(matches))
	for i := range matches {
		m := &matches[i]
		a := byMatch[m.MatchNumber]
		if a == nil {
			continue
		}
		names := make([]string, 0, len(a.attendees))
		for name := range a.attendees {
			names = append(names, name)
		}
		sort.Strings(names)
		results = append(results, MatchRecommendation{
			MatchNumber:   m.MatchNumber,
			Date:          m.Date.Format("2006-01-02"),
			Venue:         m.Venue,
			AttendeeCount: len(names),
			TotalTickets:  a.tickets,
			Attendees:     names,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].AttendeeCount != results[j].AttendeeCount {
			return results[i].AttendeeCount > results[j].AttendeeCount
		}
		return results[i].TotalTickets > results[j].TotalTickets
	})
	return results
}

type FriendAttendee struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Category string `json:"category"`
	Venue    string `json:"venue"`
	Date     string `json:"date"`
}

// FriendsAttendingMatch lists every other user holding a ticket for the match.
func (q *Queries) FriendsAttendingMatch(userID uint, matchNumber string) []FriendAttendee {
	var tickets []models.Ticket
	err := q.db.Preload("User").
		Where("match_number = ? AND user_id <> ?", matchNumber, userID).
		Find(&tickets).Error
	if err != nil {
		slog.Error("friends_attending_match query failed", "error", err)
		return []FriendAttendee{}
	}

	friends := make([]FriendAttendee, 0, len(tickets))
	for i := range tickets {
		t := &tickets[i]
		friends = append(friends, FriendAttendee{
			Username: t.User.Username,
			Name:     t.Name,
			Quantity: t.Quantity,
			Category: t.TicketCategory,
			Venue:    t.Venue,
			Date:     t.Date.Format("2006-01-02"),
		})
	}
	return friends
}

// WeekendMatches returns matches within the inclusive date range.
func (q *Queries) WeekendMatches(startDate, endDate string) []models.MatchResponse {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		slog.Error("weekend_matches invalid start date", "start_date", startDate)
		return []models.MatchResponse{}
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		slog.Error("weekend_matches invalid end date", "end_date", endDate)
		return []models.MatchResponse{}
	}

	var matches []models.Match
	if err := q.db.Where("date >= ? AND date <= ?", start, end).Order("date").Find(&matches).Error; err != nil {
		slog.Error("weekend_matches query failed", "error", err)
		return []models.MatchResponse{}
	}

	results := make([]models.MatchResponse, 0, len(matches))
	for i := range matches {
		results = append(results, matches[i].ToResponse())
	}
	return results
}

type VenueInfo struct {
	Venue        string                 `json:"venue"`
	Matches      []models.MatchResponse `json:"matches"`
	TotalMatches int                    `json:"total_matches"`
}

// VenueInfoByName groups the schedule by venue, optionally narrowed to venues
// containing the given substring.
func (q *Queries) VenueInfoByName(venue string) []VenueInfo {
	query := q.db.Model(&models.Match{}).Order("venue, date")
	if venue != "" {
		query = query.Where("LOWER(venue) LIKE ?", "%"+strings.ToLower(venue)+"%")
	}
	var matches []models.Match
	if err := query.Find(&matches).Error; err != nil {
		slog.Error("venue_info query failed", "error", err)
		return []VenueInfo{}
	}

	index := make(map[string]int)
	venues := make([]VenueInfo, 0)
	for i := range matches {
		m := &matches[i]
		pos, ok := index[m.Venue]
		if !ok {
			pos = len(venues)
			index[m.Venue] = pos
			venues = append(venues, VenueInfo{Venue: m.Venue})
		}
		venues[pos].Matches = append(venues[pos].Matches, m.ToResponse())
		venues[pos].TotalMatches++
	}
	return venues
}

// UserTickets returns every ticket owned by the user.
func (q *Queries) UserTickets(userID uint) []models.TicketResponse {
	var tickets []models.Ticket
	if err := q.db.Preload("User").Where("user_id = ?", userID).Order("date").Find(&tickets).Error; err != nil {
		slog.Error("user_tickets query failed", "error", err)
		return []models.TicketResponse{}
	}
	results := make([]models.TicketResponse, 0, len(tickets))
	for i := range tickets {
		results = append(results, tickets[i].ToResponse())
	}
	return results
}

// MatchDetails looks up a single match by its number, nil when unknown.
func (q *Queries) MatchDetails(matchNumber string) *models.MatchResponse {
	var match models.Match
	if err := q.db.Where("match_number = ?", matchNumber).First(&match).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			slog.Error("match_details query failed", "error", err)
		}
		return nil
	}
	resp := match.ToResponse()
	return &resp
}
