package models

// Identity is an opaque caller reference. It is compared for equality only.
type Identity string

// Poll phase values, derived from the clock and the poll window
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseOngoing    Phase = "ongoing"
	PhaseEnded      Phase = "ended"
)

// Ledger strategy values
type LedgerKind string

const (
	LedgerImmutable LedgerKind = "immutable"
	LedgerMutable   LedgerKind = "mutable"
)

// Domain types

type PollOption struct {
	Name      string `json:"name"`
	VoteCount uint64 `json:"vote_count"`
}

type Poll struct {
	ID            uint64       `json:"id"`
	Question      string       `json:"question"`
	Options       []PollOption `json:"options"`
	StartTime     uint64       `json:"start_time"`
	EndTime       uint64       `json:"end_time"`
	Creator       Identity     `json:"creator"`
	IsClosed      bool         `json:"is_closed"`
	CanChangeVote bool         `json:"can_change_vote"`
	Whitelist     []Identity   `json:"whitelist,omitempty"` // empty means open to everyone
}

// Ledger reports the ledger strategy selected at creation.
func (p Poll) Ledger() LedgerKind {
	if p.CanChangeVote {
		return LedgerMutable
	}
	return LedgerImmutable
}

// HasWhitelist reports whether voting is restricted to a fixed set of identities.
func (p Poll) HasWhitelist() bool {
	return len(p.Whitelist) > 0
}

// Clone returns a deep copy so stores never hand out shared slices.
func (p Poll) Clone() Poll {
	c := p
	c.Options = append([]PollOption(nil), p.Options...)
	if p.Whitelist != nil {
		c.Whitelist = append([]Identity(nil), p.Whitelist...)
	}
	return c
}

// TotalVotes sums the vote counts of every option.
func (p Poll) TotalVotes() uint64 {
	var total uint64
	for _, opt := range p.Options {
		total += opt.VoteCount
	}
	return total
}

type OptionResult struct {
	Name       string `json:"name"`
	VoteCount  uint64 `json:"vote_count"`
	Percentage uint64 `json:"percentage"`
}

type ParticipationStats struct {
	ParticipantCount uint64  `json:"participant_count"`
	Percentage       *uint64 `json:"percentage"` // nil when the poll has no whitelist
}

// VoteCastEvent is broadcast after a vote has been committed.
type VoteCastEvent struct {
	ID          string   `json:"id"`
	PollID      uint64   `json:"poll_id"`
	Voter       Identity `json:"voter"`
	OptionIndex int      `json:"option_index"`
	OptionName  string   `json:"option_name"`
	CastAt      uint64   `json:"cast_at"`
}

// Request types

type CreatePollRequest struct {
	Question      string     `json:"question"`
	Options       []string   `json:"options"`
	StartTime     uint64     `json:"start_time"`
	EndTime       uint64     `json:"end_time"`
	CanChangeVote bool       `json:"can_change_vote"`
	Whitelist     []Identity `json:"whitelist,omitempty"`
}

type ModifyPollRequest struct {
	Question  string   `json:"question"`
	Options   []string `json:"options"`
	StartTime uint64   `json:"start_time"`
	EndTime   uint64   `json:"end_time"`
}

type CastVoteRequest struct {
	OptionIndex *int `json:"option_index"`
}

type IssueTokenRequest struct {
	Identity Identity `json:"identity"`
}

// Response types

type CreatePollResponse struct {
	PollID uint64 `json:"poll_id"`
}

type PollResponse struct {
	Poll  Poll  `json:"poll"`
	Phase Phase `json:"phase"`
}

type ListPollsResponse struct {
	Polls []PollResponse `json:"polls"`
}

type ClosePollResponse struct {
	PollID   uint64 `json:"poll_id"`
	IsClosed bool   `json:"is_closed"`
}

type CastVoteResponse struct {
	PollID      uint64 `json:"poll_id"`
	OptionIndex int    `json:"option_index"`
	Message     string `json:"message"`
}

type HasVotedResponse struct {
	Voted       bool `json:"voted"`
	OptionIndex *int `json:"option_index,omitempty"` // only known for mutable ledgers
}

type PollResultsResponse struct {
	PollID  uint64         `json:"poll_id"`
	Results []OptionResult `json:"results"`
}

type ParticipationResponse struct {
	PollID uint64 `json:"poll_id"`
	ParticipationStats
}

type IssueTokenResponse struct {
	Token string `json:"token"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
}
