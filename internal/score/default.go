package score

import (
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"git.lost.host/meutraa/autochart/internal/game"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slices"
)

// Recorder keeps the history of finished plays.
type Recorder interface {
	Init() error
	Deinit()

	// Save a finished play along with every input made during it
	Save(chart *game.Chart, result Result, inputs []game.Input) (History, error)

	// Load every play of this exact chart, oldest first
	Load(chart *game.Chart) ([]History, error)
}

type History struct {
	ID     string       `json:"id"`
	Sum    string       `json:"sum"`
	Played time.Time    `json:"played"`
	Result Result       `json:"result"`
	Inputs []game.Input `json:"-"`
}

type DefaultRecorder struct {
	Path string
	Now  func() time.Time

	db *sql.DB
}

type InputsCompact struct {
	Lane  int
	Times []time.Duration
}

func compactInputs(inputs []game.Input) []InputsCompact {
	laneCount := 0
	for _, i := range inputs {
		if i.Lane >= laneCount {
			laneCount = i.Lane + 1
		}
	}
	ins := make([]InputsCompact, laneCount)
	for l := range ins {
		ins[l] = InputsCompact{Lane: l, Times: []time.Duration{}}
	}
	for _, i := range inputs {
		ins[i.Lane].Times = append(ins[i.Lane].Times, i.HitTime)
	}
	return ins
}

// uncompactInputs restores the inputs ordered by time. Presses in the same
// instant keep their lane order.
func uncompactInputs(inputs []InputsCompact) []game.Input {
	ins := []game.Input{}
	for _, i := range inputs {
		for _, t := range i.Times {
			ins = append(ins, game.Input{Lane: i.Lane, HitTime: t})
		}
	}
	slices.SortStableFunc(ins, func(a, b game.Input) bool {
		return a.HitTime < b.HitTime
	})
	return ins
}

func (s *DefaultRecorder) Init() error {
	path := s.Path
	if "" == path {
		path = "./autochart.db"
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(1)

	initStatement := `
	create table if not exists scores
	  (
		  id text not null primary key,
		  sum text not null,
		  source_id text not null,
		  difficulty text not null,
		  played integer not null,
		  score integer,
		  max_combo integer,
		  accuracy real,
		  rank text,
		  perfect integer,
		  great integer,
		  good integer,
		  miss integer,
		  total integer,
		  inputs blob
	  );
	create index if not exists scores_sum on scores(sum);
	`
	if _, err = db.Exec(initStatement); nil != err {
		db.Close()
		return fmt.Errorf("unable to create scores table: %w", err)
	}

	s.db = db
	return nil
}

func (s *DefaultRecorder) Deinit() {
	if nil != s.db {
		s.db.Close()
	}
}

// HashChart identifies a chart by its content, so a regenerated chart does
// not inherit the plays of a different one.
func HashChart(c *game.Chart) string {
	data, err := json.Marshal(c)
	if nil != err {
		log.Println("unable to marshal chart for hashing", err)
	}
	sum := sha256.Sum256(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func (s *DefaultRecorder) now() time.Time {
	if nil != s.Now {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultRecorder) Save(c *game.Chart, result Result, inputs []game.Input) (History, error) {
	data, err := json.Marshal(compactInputs(inputs))
	if nil != err {
		return History{}, fmt.Errorf("unable to marshal inputs: %w", err)
	}
	h := History{
		ID:     uuid.NewString(),
		Sum:    HashChart(c),
		Played: s.now().UTC().Truncate(time.Second),
		Result: result,
		Inputs: inputs,
	}
	_, err = s.db.Exec(`insert into scores(id, sum, source_id, difficulty, played,
		score, max_combo, accuracy, rank, perfect, great, good, miss, total, inputs)
		values(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Sum, c.SourceID, c.Difficulty, h.Played.Unix(),
		result.Score, result.MaxCombo, result.Accuracy, string(result.Rank),
		result.Perfect, result.Great, result.Good, result.Miss, result.TotalNotes, data)
	if nil != err {
		return History{}, fmt.Errorf("unable to save score: %w", err)
	}
	return h, nil
}

func (s *DefaultRecorder) Load(c *game.Chart) ([]History, error) {
	histories := []History{}
	rows, err := s.db.Query(`select id, sum, played, score, max_combo, accuracy, rank,
		perfect, great, good, miss, total, inputs
		from scores where sum = ? order by played, rowid`, HashChart(c))
	if nil != err {
		return histories, fmt.Errorf("unable to load scores: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var h History
		var played int64
		var rank string
		var data []byte
		r := &h.Result
		err := rows.Scan(&h.ID, &h.Sum, &played, &r.Score, &r.MaxCombo, &r.Accuracy, &rank,
			&r.Perfect, &r.Great, &r.Good, &r.Miss, &r.TotalNotes, &data)
		if nil != err {
			log.Println("unable to scan score", err)
			continue
		}
		var ins []InputsCompact
		if err := json.Unmarshal(data, &ins); nil != err {
			log.Println("unable to unmarshal input history", h.ID, err)
			continue
		}
		h.Played = time.Unix(played, 0).UTC()
		r.Rank = Rank(rank)
		h.Inputs = uncompactInputs(ins)
		histories = append(histories, h)
	}
	return histories, rows.Err()
}
