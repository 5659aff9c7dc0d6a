package domain

import "time"

const (
	// CodeLength is the number of characters in a join code.
	CodeLength = 6
	// DefaultQuestionDuration is used when a game is created without a duration.
	DefaultQuestionDuration = 20
	MinQuestionDuration     = 5
	MaxQuestionDuration     = 120

	MinOptions   = 2
	MaxOptions   = 6
	MinQuestions = 1
	MaxQuestions = 50

	// NoAnswer is the selected index recorded when a player timed out.
	NoAnswer = -1
)

// Game is one trivia session that players find by its join code.
type Game struct {
	ID                      string    `json:"id"`
	Code                    string    `json:"code"`
	Name                    string    `json:"name"`
	QuestionDurationSeconds int       `json:"questionDurationSeconds"`
	CreatedAt               time.Time `json:"createdAt"`
	IsActive                bool      `json:"isActive"`
}

// Option is a single answer choice. Image is optional.
type Option struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

// Question belongs to exactly one game. CorrectAnswer indexes Options.
type Question struct {
	ID            string   `json:"id"`
	GameID        string   `json:"gameId"`
	Text          string   `json:"text"`
	Image         string   `json:"image,omitempty"`
	Options       []Option `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Order         int      `json:"order"`
}

// QuestionDraft is the unpersisted shape supplied when creating a game.
type QuestionDraft struct {
	Text          string   `json:"text"`
	Image         string   `json:"image,omitempty"`
	Options       []Option `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// GameDraft carries everything needed to create a game.
type GameDraft struct {
	Name                    string          `json:"name"`
	QuestionDurationSeconds int             `json:"questionDurationSeconds"`
	Questions               []QuestionDraft `json:"questions"`
}

// Player is registered once per (name, phone, game) triple.
type Player struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	GameID         string     `json:"gameId"`
	Score          int        `json:"score"`
	CorrectAnswers int        `json:"correctAnswers"`
	TotalAnswers   int        `json:"totalAnswers"`
	AverageTime    int        `json:"averageTime"`
	CompletedAt    *time.Time `json:"completedAt"`
}

// Completed reports whether the player has finished the game.
func (p Player) Completed() bool {
	return p.CompletedAt != nil
}

// PlayerAnswer is an append-only record of one answered question.
type PlayerAnswer struct {
	ID             string  `json:"id"`
	PlayerID       string  `json:"playerId"`
	QuestionID     string  `json:"questionId"`
	SelectedAnswer int     `json:"selectedAnswer"`
	IsCorrect      bool    `json:"isCorrect"`
	TimeSpent      float64 `json:"timeSpent"`
	Points         int     `json:"points"`
}

// AnswerSubmission is what the game-play flow sends for one question.
type AnswerSubmission struct {
	QuestionID     string  `json:"questionId"`
	SelectedAnswer int     `json:"selectedAnswer"`
	IsCorrect      bool    `json:"isCorrect"`
	TimeSpent      float64 `json:"timeSpent"`
}

// PlayerTotals are the aggregate fields written when a player completes.
type PlayerTotals struct {
	Score          int `json:"score"`
	CorrectAnswers int `json:"correctAnswers"`
	TotalAnswers   int `json:"totalAnswers"`
	AverageTime    int `json:"averageTime"`
}

// Registration is the outcome of registering a player. A repeat registration
// is a success that returns the stored player.
type Registration struct {
	Player       Player `json:"player"`
	IsExisting   bool   `json:"isExisting"`
	HasCompleted bool   `json:"hasCompleted"`
}

// AnswerResult wraps a stored answer. AlreadyAnswered is set when the
// question had been answered before and the earlier record is returned.
type AnswerResult struct {
	Answer          PlayerAnswer `json:"answer"`
	AlreadyAnswered bool         `json:"alreadyAnswered"`
}

// LeaderboardEntry is a snapshot-friendly view of a player.
type LeaderboardEntry struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Completed bool   `json:"completed"`
}

// Leaderboard captures the ordered scoreboard for a game.
type Leaderboard struct {
	GameID    string             `json:"gameId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Winner is the top completed player of a game, with contact details.
type Winner struct {
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Score       int       `json:"score"`
	GameName    string    `json:"gameName"`
	GameCode    string    `json:"gameCode"`
	CompletedAt time.Time `json:"completedAt"`
}

// TodayStats is the public daily counter view.
type TodayStats struct {
	GamesPlayedToday int `json:"gamesPlayedToday"`
	TotalPlayers     int `json:"totalPlayers"`
}

// Analytics is the operator view across all games.
type Analytics struct {
	TotalGames            int      `json:"totalGames"`
	GamesPlayedToday      int      `json:"gamesPlayedToday"`
	TotalPlayers          int      `json:"totalPlayers"`
	CompletedGames        int      `json:"completedGames"`
	WinnersCount          int      `json:"winnersCount"`
	Winners               []Winner `json:"winners"`
	AveragePlayersPerGame float64  `json:"averagePlayersPerGame"`
}
