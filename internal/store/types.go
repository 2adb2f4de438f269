package store

// The persisted JSON layout is the backup file format: whatever shape
// Data marshals to is exactly what Export writes and ReplaceAll reads.

type Settings struct {
	ScoreMax     int `json:"scoreMax"`
	SessionScore int `json:"sessionScore"`
}

type Teacher struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Group struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Level     string `json:"level"`
	TeacherID string `json:"teacherId"`
	// StudentIDs is a denormalized membership cache; AddStudent keeps it
	// consistent with Student.GroupID.
	StudentIDs []string `json:"studentIds"`
}

type VocabEntry struct {
	ID      string `json:"id"`
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
	Learned bool   `json:"learned"`
}

type Student struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	GroupID string `json:"groupId"`
	Avatar  string `json:"avatar"`
	Score   int    `json:"score"`
	Streak  int    `json:"streak"`
	// ParentPin empty means the parent view needs no PIN.
	ParentPin string       `json:"parentPin"`
	Vocab     []VocabEntry `json:"vocab"`
}

// DayGroup holds one group's record for one calendar day. Absent
// entries mean "nothing recorded yet"; they are created lazily on first
// touch and never pre-populated.
type DayGroup struct {
	Attendance map[string]bool `json:"attendance"`
	Note       string          `json:"note"`
	Homework   string          `json:"homework"`
}

// Data is the whole classroom aggregate, replaced wholesale on every
// mutation.
type Data struct {
	Settings Settings  `json:"settings"`
	Teachers []Teacher `json:"teachers"`
	Groups   []Group   `json:"groups"`
	Students []Student `json:"students"`
	// Daily[dateKey][groupID]
	Daily map[string]map[string]DayGroup `json:"daily"`
	// DailyScore[dateKey][studentID] accumulates signed score deltas per
	// day, independent of the running score total. Only the weekly
	// leaderboard reads it.
	DailyScore map[string]map[string]int `json:"dailyScore"`
}

const (
	DefaultScoreMax     = 100
	DefaultSessionScore = 10
)

// Levels a group can be created with.
var Levels = []string{
	"Beginner", "Elementary", "Pre-Intermediate",
	"Intermediate", "Upper-Intermediate", "IELTS",
}

// Avatars is the fixed asset pool a new student's avatar is drawn from
// when none is chosen.
var Avatars = []string{
	"/avatars/boy1.png",
	"/avatars/boy2.png",
	"/avatars/girl1.png",
	"/avatars/girl2.png",
}

func defaultSettings() Settings {
	return Settings{ScoreMax: DefaultScoreMax, SessionScore: DefaultSessionScore}
}

func initialData() Data {
	return Data{
		Settings:   defaultSettings(),
		Teachers:   []Teacher{},
		Groups:     []Group{},
		Students:   []Student{},
		Daily:      map[string]map[string]DayGroup{},
		DailyScore: map[string]map[string]int{},
	}
}
