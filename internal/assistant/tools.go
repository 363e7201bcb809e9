package assistant

import (
	"encoding/json"
	"fmt"

	"github.com/vulkenree/fifa-tickets-app/internal/llm"
)

// ToolHandler executes one named tool for the given user. The result is fed
// back to the model verbatim, so handlers return plain data, never panic.
type ToolHandler func(userID uint, args json.RawMessage) (interface{}, error)

// Registry binds the advertised tool schema to typed handlers. Construction
// fails if any advertised tool lacks a handler or vice versa, so a tool can
// never silently mismatch its declared parameters.
type Registry struct {
	defs     []llm.ToolDef
	handlers map[string]ToolHandler
}

func NewRegistry(queries *Queries, gate *SQLGate) (*Registry, error) {
	r := &Registry{handlers: make(map[string]ToolHandler)}

	r.register(llm.ToolDef{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        "get_tickets_by_filters",
			Description: "Query tickets with optional filters: venue, match number, date range, category, username",
			Parameters: llm.ToolParameters{
				Type: "object",
				Properties: map[string]llm.ToolParamDef{
					"filters": {
						Type: "object",
						Properties: map[string]llm.ToolParamDef{
							"venue":        {Type: "string", Description: "Venue name substring"},
							"match_number": {Type: "string", Description: "Match number, e.g. M50"},
							"date_from":    {Type: "string", Description: "Start date (YYYY-MM-DD)"},
							"date_to":      {Type: "string", Description: "End date (YYYY-MM-DD)"},
							"category":     {Type: "string", Description: "Ticket category"},
							"username":     {Type: "string", Description: "Owner username substring"},
						},
					},
				},
			},
		},
	}, func(userID uint, args json.RawMessage) (interface{}, error) {
		var params struct {
			Filters *TicketFilters `json:"filters"`
		}
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, fmt.Errorf("get_tickets_by_filters: bad arguments: %w", err)
		}
		return queries.TicketsByFilters(params.Filters), nil
	})

	r.register(llm.ToolDef{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        "get_friends_with_tickets_count",
			Description: "For every user owning at least one ticket, their username and ticket count, highest first",
			Parameters:  llm.ToolParameters{Type: "object"},
		},
	}, func(userID uint, args json.RawMessage) (interface{}, error) {
		return queries.FriendsWithTicketsCount(), nil
	})

	r.register(llm.ToolDef{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        "get_matches_by_attendance",
			Description: "Rank matches by attendance: distinct ticket owners or total ticket quantity",
			Parameters: llm.ToolParameters{
				Type: "object",
				Properties: map[string]llm.ToolParamDef{
					"ranking_type": {
						Type:        "string",
						Description: "Ranking metric",
						Enum:        []string{"users", "tickets"},
					},
				},
			},
		},
	}, func(userID uint, args json.RawMessage) (interface{}, error) {
		var params struct {
			RankingType string `json:"ranking_type"`
		}
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, fmt.Errorf("get_matches_by_attendance: bad arguments: %w", err)
		}
		if params.RankingType == "" {
			params.RankingType = "users"
		}
		return queries.MatchesByAttendance(params.RankingType), nil
	})

	r.register(llm.ToolDef{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        "recommend_matches_by_friends_and_venue",
			Description: "Recommend matches where the named friends hold tickets, optionally narrowed by venue",
			Parameters: llm.ToolParameters{
				Type: "object",
				Properties: map[string]llm.ToolParamDef{
					"preferred_usernames": {
						Type:        "array",
						Description: "Usernames of friends to meet",
						Items:       &llm.ToolParamDef{Type: "string"},
					},
					"preferred_venue": {Type: "string", Description: "Venue name substring"},
				},
			},
		},
	}, func(userID uint, args json.RawMessage) (interface{}, error) {
		var params struct {
			PreferredUsernames []string `json:"preferred_usernames"`
			PreferredVenue     string   `json:"preferred_venue"`
		}
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, fmt.Errorf("recommend_matches_by_friends_and_venue: bad arguments: %w", err)
		}
		return queries.RecommendMatchesByFriendsAndVenue(params.PreferredUsernames, params.PreferredVenue), nil
	})

	r.register(llm.ToolDef{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        "get_friends_attending_match",
			Description: "Find which other users are attending a specific match",
			Parameters: llm.ToolParameters{
				Type: "object",
				Properties: map[string]llm.ToolParamDef{
					"match_number": {Type: "string", Description: "Match number, e.g. M50"},
				},
				Required: []string{"match_number"},
			},
		},
	}, func(userID uint, args json.RawMessage) (interface{}, error) {
		var params struct {
			MatchNumber string `json:"match_number"`
		}
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, fmt.Errorf("get_friends_attending_match: bad arguments: %w", err)
		}
		return queries.FriendsAttendingMatch(userID, params.MatchNumber), nil
	})

	r.register(llm.ToolDef{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        "get_weekend_matches",
			Description: "Get matches within a date range",
			Parameters: llm.ToolParameters{
				Type: "object",
				Properties: map[string]llm.ToolParamDef{
					"start_date": {Type: "string", Description: "Start date (YYYY-MM-DD)"},
					"end_date":   {Type: "string", Description: "End date (YYYY-MM-DD)"},
				},
				Required: []string{"start_date", "end_date"},
			},
		},
	}, func(userID uint, args json.RawMessage) (interface{}, error) {
		var params struct {
			StartDate string `json:"start_date"`
			EndDate   string `json:"end_date"`
		}
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, fmt.Errorf("get_weekend_matches: bad arguments: %w", err)
		}
		return queries.WeekendMatches(params.StartDate, params.EndDate), nil
	})

	r.register(llm.ToolDef{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        "get_venue_info",
			Description: "Get venues with their scheduled matches",
			Parameters: llm.ToolParameters{
				Type: "object",
				Properties: map[string]llm.ToolParamDef{
					"venue": {Type: "string", Description: "Venue name substring (optional)"},
				},
			},
		},
	}, func(userID uint, args json.RawMessage) (interface{}, error) {
		var params struct {
			Venue string `json:"venue"`
		}
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, fmt.Errorf("get_venue_info: bad arguments: %w", err)
		}
		return queries.VenueInfoByName(params.Venue), nil
	})

	r.register(llm.ToolDef{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        "get_user_tickets",
			Description: "Get all tickets owned by the current user",
			Parameters:  llm.ToolParameters{Type: "object"},
		},
	}, func(userID uint, args json.RawMessage) (interface{}, error) {
		return queries.UserTickets(userID), nil
	})

	r.register(llm.ToolDef{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        "get_match_details",
			Description: "Get date and venue for a specific match",
			Parameters: llm.ToolParameters{
				Type: "object",
				Properties: map[string]llm.ToolParamDef{
					"match_number": {Type: "string", Description: "Match number, e.g. M50"},
				},
				Required: []string{"match_number"},
			},
		},
	}, func(userID uint, args json.RawMessage) (interface{}, error) {
		var params struct {
			MatchNumber string `json:"match_number"`
		}
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, fmt.Errorf("get_match_details: bad arguments: %w", err)
		}
		detail := queries.MatchDetails(params.MatchNumber)
		if detail == nil {
			return map[string]interface{}{"error": "match not found"}, nil
		}
		return detail, nil
	})

	r.register(llm.ToolDef{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        "execute_sql_query",
			Description: "Run a single read-only SELECT statement for aggregate questions the other functions cannot answer. Mutating statements are rejected.",
			Parameters: llm.ToolParameters{
				Type: "object",
				Properties: map[string]llm.ToolParamDef{
					"query":    {Type: "string", Description: "One SELECT statement"},
					"question": {Type: "string", Description: "The user question this query answers"},
				},
				Required: []string{"query"},
			},
		},
	}, func(userID uint, args json.RawMessage) (interface{}, error) {
		var params struct {
			Query    string `json:"query"`
			Question string `json:"question"`
		}
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, fmt.Errorf("execute_sql_query: bad arguments: %w", err)
		}
		rows, err := gate.Execute(userID, params.Question, params.Query)
		if err != nil {
			// A gate rejection is a normal tool outcome, not a failed turn:
			// the model gets the explanation and answers accordingly.
			return map[string]interface{}{"error": err.Error(), "rows": []interface{}{}}, nil
		}
		return map[string]interface{}{"rows": rows, "row_count": len(rows)}, nil
	})

	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) register(def llm.ToolDef, handler ToolHandler) {
	r.defs = append(r.defs, def)
	r.handlers[def.Function.Name] = handler
}

func (r *Registry) validate() error {
	seen := make(map[string]bool, len(r.defs))
	for _, def := range r.defs {
		name := def.Function.Name
		if name == "" {
			return fmt.Errorf("tool registry: unnamed tool definition")
		}
		if seen[name] {
			return fmt.Errorf("tool registry: duplicate tool %q", name)
		}
		seen[name] = true
		if _, ok := r.handlers[name]; !ok {
			return fmt.Errorf("tool registry: tool %q has no handler", name)
		}
	}
	if len(r.handlers) != len(r.defs) {
		return fmt.Errorf("tool registry: %d handlers for %d advertised tools", len(r.handlers), len(r.defs))
	}
	return nil
}

// Defs returns the advertised tool schema sent to the model.
func (r *Registry) Defs() []llm.ToolDef {
	return r.defs
}

// Dispatch runs the named tool. Unknown names are an error; the orchestrator
// reports them back to the model rather than crashing the turn.
func (r *Registry) Dispatch(userID uint, name string, args json.RawMessage) (interface{}, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("unknown function: %s", name)
	}
	return handler(userID, args)
}
