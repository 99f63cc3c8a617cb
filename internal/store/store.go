package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abhisek/ipquiz/internal/quiz"
)

var (
	// ErrNotFound is returned by loads when the backend holds no data yet.
	ErrNotFound = errors.New("not found")

	// ErrReadOnly is returned by saves on a read-only backend.
	ErrReadOnly = errors.New("store is read-only")
)

// Repo persists the question bank, hint map and admin PIN hash. Saves
// replace the stored collection wholesale.
type Repo interface {
	LoadQuestions(ctx context.Context) (quiz.Bank, error)
	SaveQuestions(ctx context.Context, bank quiz.Bank) error

	LoadHints(ctx context.Context) (quiz.HintMap, error)
	SaveHints(ctx context.Context, hints quiz.HintMap) error

	LoadPINHash(ctx context.Context) (string, error)
	SavePINHash(ctx context.Context, hash string) error

	Close() error
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Session event actions.
const (
	ActionStart   = "start"
	ActionFinish  = "finish"
	ActionAbandon = "abandon"
)

// SessionEventData captures one quiz session lifecycle event.
type SessionEventData struct {
	SessionID    string
	Action       string
	Questions    int
	Total        int
	Possible     int
	DurationSecs int
	ByTopic      map[string]int
	ByLevel      map[string]int
}

// SessionSummaryRecord is a finished session as read back for history.
type SessionSummaryRecord struct {
	Sequence     int64
	SessionID    string
	Timestamp    time.Time
	Questions    int
	Total        int
	Possible     int
	DurationSecs int
	ByTopic      map[string]int
	ByLevel      map[string]int
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for one purpose.
type LLMUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummaryRecord, error)

	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)
	GetLLMEvent(ctx context.Context, id int64) (*LLMEventRecord, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
}

// DefaultDBPath resolves the database file path in priority order:
// 1. IPQUIZ_DB environment variable
// 2. $XDG_DATA_HOME/ipquiz/ipquiz.db
// 3. ~/.local/share/ipquiz/ipquiz.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("IPQUIZ_DB"); p != "" {
		return p, EnsureDir(p)
	}
	return dataPath("ipquiz.db")
}

// DefaultFilePath resolves the JSON document path used by the file backend.
func DefaultFilePath() (string, error) {
	if p := os.Getenv("IPQUIZ_FILE"); p != "" {
		return p, EnsureDir(p)
	}
	return dataPath("bank.json")
}

func dataPath(name string) (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "ipquiz", name)
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
