package model

// StateView is the canonical read-model returned by every API operation.
// Exactly one of three shapes is rendered, per the session state:
//
//   - logged out:        {player_id: null}
//   - lobby (no game):   player_id, player_name, games, worlds
//   - in a game:         player_id, player_name, game, money, cards
//
// Optional fields use pointers so that an empty-but-present list (lobby with
// no games yet) is distinguishable from an omitted one (in-game shape).
type StateView struct {
	PlayerID   *int64         `json:"player_id"`
	PlayerName string         `json:"player_name,omitempty"`
	Games      *[]GameView    `json:"games,omitempty"`
	Worlds     *[]WorldView   `json:"worlds,omitempty"`
	Game       string         `json:"game,omitempty"`
	Money      *int64         `json:"money,omitempty"`
	Cards      *[]CardView    `json:"cards,omitempty"`
}

// GameView is one joinable game in the lobby listing.
type GameView struct {
	ID      int64    `json:"id"`
	World   string   `json:"world"`
	Players []string `json:"players"`
}

// WorldView is one world available for new games.
type WorldView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CardView renders a held card. Number, Event, and Contracts are emitted
// only when present; a blank card renders as just its id.
type CardView struct {
	ID        int64          `json:"id"`
	Number    *int64         `json:"number,omitempty"`
	Event     string         `json:"event,omitempty"`
	Contracts []ContractView `json:"contracts,omitempty"`
}

// ContractView renders one demand attached to a card.
type ContractView struct {
	ID     int64  `json:"id"`
	Good   string `json:"good"`
	City   string `json:"city"`
	Amount int64  `json:"amount"`
}
