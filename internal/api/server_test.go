package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"git.lost.host/meutraa/autochart/internal/export"
	"git.lost.host/meutraa/autochart/internal/game"
	"git.lost.host/meutraa/autochart/internal/score"
	"git.lost.host/meutraa/autochart/internal/session"
	"git.lost.host/meutraa/autochart/internal/store"
	"git.lost.host/meutraa/autochart/internal/testdata"
)

func newServer(t *testing.T) (*httptest.Server, *game.Chart, *score.DefaultRecorder) {
	chart, err := testdata.GetChart()
	if nil != err {
		t.Fatal(err)
	}
	s := store.NewMemoryStore()
	if err := s.Put(chart); nil != err {
		t.Fatal(err)
	}
	recorder := &score.DefaultRecorder{Path: filepath.Join(t.TempDir(), "scores.db")}
	if err := recorder.Init(); nil != err {
		t.Fatal(err)
	}
	t.Cleanup(recorder.Deinit)
	server := &Server{Store: s, Recorder: recorder, Options: session.DefaultOptions()}
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts, chart, recorder
}

func get(t *testing.T, url string, status int) *http.Response {
	res, err := http.Get(url)
	if nil != err {
		t.Fatal(err)
	}
	if res.StatusCode != status {
		res.Body.Close()
		t.Fatal(url, "expected status", status, "got", res.StatusCode)
	}
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func TestList(t *testing.T) {
	ts, _, _ := newServer(t)
	res := get(t, ts.URL+"/charts", http.StatusOK)
	var entries []store.Entry
	if err := json.NewDecoder(res.Body).Decode(&entries); nil != err {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].SourceID != "fixture" || entries[0].Notes != 8 {
		t.Fatal("entries", entries)
	}
}

func TestChart(t *testing.T) {
	ts, chart, _ := newServer(t)
	res := get(t, ts.URL+"/charts/fixture/normal", http.StatusOK)
	var got game.Chart
	if err := json.NewDecoder(res.Body).Decode(&got); nil != err {
		t.Fatal(err)
	}
	if got.SourceID != chart.SourceID || len(got.Notes) != len(chart.Notes) || got.Notes[4] != chart.Notes[4] {
		t.Fatal("chart", got)
	}
	get(t, ts.URL+"/charts/fixture/hard", http.StatusNotFound)
	get(t, ts.URL+"/charts/missing/normal/midi", http.StatusNotFound)
}

func TestMIDI(t *testing.T) {
	ts, chart, _ := newServer(t)
	res := get(t, ts.URL+"/charts/fixture/normal/midi", http.StatusOK)
	if res.Header.Get("Content-Type") != "audio/midi" {
		t.Fatal("content type", res.Header.Get("Content-Type"))
	}
	hits, err := export.Read(res.Body)
	if nil != err || len(hits) != len(chart.Notes) {
		t.Fatal(hits, err)
	}
}

func TestScores(t *testing.T) {
	ts, chart, recorder := newServer(t)
	result := score.Result{Score: 1234, Rank: score.D, TotalNotes: 8}
	if _, err := recorder.Save(chart, result, []game.Input{{Lane: 0, HitTime: 1}}); nil != err {
		t.Fatal(err)
	}
	res := get(t, ts.URL+"/charts/fixture/normal/scores", http.StatusOK)
	var histories []score.History
	if err := json.NewDecoder(res.Body).Decode(&histories); nil != err {
		t.Fatal(err)
	}
	if len(histories) != 1 || histories[0].Result != result {
		t.Fatal("histories", histories)
	}
}

func TestReplay(t *testing.T) {
	ts, chart, _ := newServer(t)
	inputs := []Input{}
	for _, n := range chart.Notes {
		inputs = append(inputs, Input{Lane: n.Lane, Time: n.Time * 1000})
	}
	body, _ := json.Marshal(inputs)
	res, err := http.Post(ts.URL+"/charts/fixture/normal/replay", "application/json", bytes.NewReader(body))
	if nil != err {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatal("status", res.StatusCode)
	}
	var result score.Result
	if err := json.NewDecoder(res.Body).Decode(&result); nil != err {
		t.Fatal(err)
	}
	if result.Perfect != len(chart.Notes) || result.Rank != score.SS {
		t.Fatal("result", result)
	}

	bad, err := http.Post(ts.URL+"/charts/fixture/normal/replay", "application/json", bytes.NewReader([]byte(`{"lane": 1}`)))
	if nil != err {
		t.Fatal(err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatal("malformed replay status", bad.StatusCode)
	}
}

func TestReplayRejectsOutOfRange(t *testing.T) {
	ts, chart, _ := newServer(t)
	end := (chart.Length()*1000 + 200)
	for name, body := range map[string][]byte{
		"far future":  []byte(`[{"lane": 0, "time": 1e13}]`),
		"far past":    []byte(`[{"lane": 0, "time": -1e13}]`),
		"after end":   []byte(fmt.Sprintf(`[{"lane": 0, "time": %v}]`, end+1)),
		"before lead": []byte(`[{"lane": 0, "time": -10001}]`),
		"too large":   append([]byte("["), bytes.Repeat([]byte(`{"lane": 0, "time": 1000},`), MaxReplayBody/20)...),
	} {
		res, err := http.Post(ts.URL+"/charts/fixture/normal/replay", "application/json", bytes.NewReader(body))
		if nil != err {
			// The server may hang up before an oversized body is sent
			if name == "too large" {
				continue
			}
			t.Fatal(err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusBadRequest {
			t.Log(name, "status", res.StatusCode)
			t.Fail()
		}
	}

	// The edges of the range are accepted
	body := []byte(fmt.Sprintf(`[{"lane": 0, "time": -10000}, {"lane": 0, "time": %v}]`, end))
	res, err := http.Post(ts.URL+"/charts/fixture/normal/replay", "application/json", bytes.NewReader(body))
	if nil != err {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatal("edge status", res.StatusCode)
	}
}

func TestCORS(t *testing.T) {
	ts, _, _ := newServer(t)
	req, _ := http.NewRequest("GET", ts.URL+"/charts", nil)
	req.Header.Set("Origin", "http://example.com")
	res, err := http.DefaultClient.Do(req)
	if nil != err {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing cors header", res.Header)
	}
}
