package spec

type Terminal struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

type NonTerminal struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

type Production struct {
	Number int   `json:"number"`
	LHS    int   `json:"lhs"`
	RHS    []int `json:"rhs"`
}

type Item struct {
	Production int `json:"production"`
	Dot        int `json:"dot"`
	LookAhead  int `json:"look_ahead"`
}

type Transition struct {
	Symbol int `json:"symbol"`
	State  int `json:"state"`
}

type Reduce struct {
	LookAhead  []int `json:"look_ahead"`
	Production int   `json:"production"`
}

type SRConflict struct {
	Symbol            int  `json:"symbol"`
	State             int  `json:"state"`
	Production        int  `json:"production"`
	AdoptedState      *int `json:"adopted_state"`
	AdoptedProduction *int `json:"adopted_production"`
	ResolvedBy        int  `json:"resolved_by"`
}

type RRConflict struct {
	Symbol            int `json:"symbol"`
	Production1       int `json:"production_1"`
	Production2       int `json:"production_2"`
	AdoptedProduction int `json:"adopted_production"`
	ResolvedBy        int `json:"resolved_by"`
}

type State struct {
	Number     int           `json:"number"`
	Items      []*Item       `json:"items"`
	Shift      []*Transition `json:"shift"`
	Reduce     []*Reduce     `json:"reduce"`
	GoTo       []*Transition `json:"goto"`
	SRConflict []*SRConflict `json:"sr_conflict"`
	RRConflict []*RRConflict `json:"rr_conflict"`
}

type FirstEntry struct {
	Symbol    string   `json:"symbol"`
	Terminals []string `json:"terminals"`
	Empty     bool     `json:"empty"`
}

type FollowEntry struct {
	Symbol    string   `json:"symbol"`
	Terminals []string `json:"terminals"`
	EOF       bool     `json:"eof"`
}

type Report struct {
	Class        string         `json:"class"`
	Terminals    []*Terminal    `json:"terminals"`
	NonTerminals []*NonTerminal `json:"non_terminals"`
	Productions  []*Production  `json:"productions"`
	States       []*State       `json:"states"`
	First        []*FirstEntry  `json:"first"`
	Follow       []*FollowEntry `json:"follow"`
}
