package store

import (
	"database/sql"
	"fmt"
	"time"

	"git.lost.host/meutraa/autochart/internal/game"
	"git.lost.host/meutraa/autochart/internal/parser"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db     *sql.DB
	parser parser.DefaultParser
	now    func() time.Time
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	if err := createTables(db); nil != err {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func createTables(db *sql.DB) error {
	createChartsTable := `
	create table if not exists charts
	  (
		  source_id text not null,
		  difficulty text not null,
		  audio_reference text not null,
		  bpm real not null,
		  notes integer not null,
		  updated integer not null,
		  data blob not null,
		  primary key (source_id, difficulty)
	  );
	`
	if _, err := db.Exec(createChartsTable); nil != err {
		return fmt.Errorf("error creating charts table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if nil != s.db {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Get(key Key) (*game.Chart, error) {
	var data []byte
	row := s.db.QueryRow("select data from charts where source_id = ? and difficulty = ?", key.SourceID, key.Difficulty)
	if err := row.Scan(&data); nil != err {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to retrieve chart %s: %w", key, err)
	}
	chart, err := s.parser.Unmarshal(data)
	if nil != err {
		return nil, fmt.Errorf("chart %s: %w", key, err)
	}
	if KeyOf(chart) != key {
		return nil, fmt.Errorf("%w: chart %s stored under %s", game.ErrSerialization, KeyOf(chart), key)
	}
	return chart, nil
}

func (s *SQLiteStore) Put(chart *game.Chart) error {
	key := KeyOf(chart)
	if err := key.validate(); nil != err {
		return err
	}
	data, err := s.parser.Marshal(chart)
	if nil != err {
		return err
	}
	_, err = s.db.Exec(`insert or replace into charts
		(source_id, difficulty, audio_reference, bpm, notes, updated, data)
		values (?, ?, ?, ?, ?, ?, ?)`,
		key.SourceID, key.Difficulty, chart.AudioReference, chart.BPM, chart.NoteCount(), s.now().Unix(), data)
	if nil != err {
		return fmt.Errorf("error saving chart %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(key Key) error {
	result, err := s.db.Exec("delete from charts where source_id = ? and difficulty = ?", key.SourceID, key.Difficulty)
	if nil != err {
		return fmt.Errorf("error deleting chart %s: %w", key, err)
	}
	if n, err := result.RowsAffected(); nil == err && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return nil
}

func (s *SQLiteStore) List() ([]Entry, error) {
	entries := []Entry{}
	rows, err := s.db.Query(`select source_id, difficulty, audio_reference, bpm, notes, updated
		from charts order by source_id, difficulty`)
	if nil != err {
		return entries, fmt.Errorf("error listing charts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e Entry
		var updated int64
		if err := rows.Scan(&e.SourceID, &e.Difficulty, &e.AudioReference, &e.BPM, &e.Notes, &updated); nil != err {
			return entries, fmt.Errorf("error scanning row: %w", err)
		}
		e.Updated = time.Unix(updated, 0).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
