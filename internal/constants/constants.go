package constants

const (
	ModePractice     = "practice"
	ModeTestStandard = "test_standard"
	ModeTestRush     = "test_rush"
	ModeFun          = "fun"
)

const (
	GameTypeSpelling   = "spelling"
	GameTypeQuiz       = "quiz"
	GameTypeUnscramble = "unscramble"
	GameTypeBlanks     = "blanks"
	GameTypeOrigin     = "origin"
)

const (
	SessionModeStandard   = "standard"
	SessionModeRush       = "rush"
	SessionModeUnscramble = "unscramble"
	SessionModeQuiz       = "quiz"
)

const (
	SourceTierAuthoritative = "authoritative"
	SourceTierSupplementary = "supplementary"
)

const (
	RoomPhaseWaiting = "waiting"
	RoomPhaseRunning = "running"
	RoomPhaseEnded   = "ended"
)

const (
	TierGrandmaster = "Grandmaster"
	TierWordWizard  = "WordWizard"
	TierSpellingBee = "SpellingBee"
	TierRookie      = "Rookie"
)

const (
	ActionJoined = "joined"
	ActionLeft   = "left"
)
