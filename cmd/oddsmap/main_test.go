package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"oddsmap/internal/config"
	"oddsmap/internal/entity"
	"oddsmap/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	cfg.Logging.Level = "error"
	testsupport.WriteCorpus(t, cfg.Paths.PlayersDB,
		testsupport.Player(1, "Rafael", "Nadal"),
		testsupport.Player(2, "Novak", "Djokovic"),
	)
	testsupport.WriteCorpus(t, cfg.Paths.TournamentsDB, testsupport.Tournament(1, "Wimbledon"))

	configPath := filepath.Join(cfg.Paths.DataDir, "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustRunJSON(t *testing.T, configPath string, v any, args ...string) {
	t.Helper()
	out, _, err := runCLI(t, configPath, append([]string{"--json"}, args...)...)
	if err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("%s: decode %q: %v", strings.Join(args, " "), out, err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "file present: yes")
	requireContains(t, out, "[paths]")
	requireContains(t, out, env.cfg.Paths.PlayersDB)
}

func TestReviewWorkflow(t *testing.T) {
	env := setupCLITestEnv(t)

	var seeded struct {
		Records int `json:"records"`
		Aliases int `json:"aliases_written"`
	}
	mustRunJSON(t, env.configPath, &seeded, "seed", "players")
	if seeded.Records != 2 || seeded.Aliases == 0 {
		t.Fatalf("seed = %+v", seeded)
	}

	out, _, err := runCLI(t, env.configPath, "resolve", "players", "Rafael Nadal", "Nobody Atall")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	requireContains(t, out, "Rafael Nadal")
	requireContains(t, out, "miss")

	var registered []resolveResult
	mustRunJSON(t, env.configPath, &registered, "resolve", "players", "--register", "--source", "bk1", "Jannik Sinner")
	if len(registered) != 1 || registered[0].Status != "pending" || registered[0].ProposalID == "" {
		t.Fatalf("register = %+v", registered)
	}
	proposalID := registered[0].ProposalID

	var pending []entity.Proposal
	mustRunJSON(t, env.configPath, &pending, "list", "players")
	if len(pending) != 1 || pending[0].ID != proposalID {
		t.Fatalf("pending = %+v", pending)
	}

	out, _, err = runCLI(t, env.configPath, "list", "players")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, proposalID)

	var approved struct {
		ID int64 `json:"id"`
	}
	mustRunJSON(t, env.configPath, &approved, "approve-player", proposalID, "--first", "Jannik", "--last", "Sinner", "--hand", "Right")
	if approved.ID != 3 {
		t.Fatalf("approved id = %d, want 3", approved.ID)
	}

	var resolved []resolveResult
	mustRunJSON(t, env.configPath, &resolved, "resolve", "players", "Sinner, J.")
	if len(resolved) != 1 || resolved[0].ID != 3 {
		t.Fatalf("resolve after approve = %+v", resolved)
	}

	out, _, err = runCLI(t, env.configPath, "list", "players")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "No pending players")

	var meta struct {
		NextID int64 `json:"next_id"`
	}
	mustRunJSON(t, env.configPath, &meta, "meta", "players")
	if meta.NextID != 4 {
		t.Fatalf("next_id = %d, want 4", meta.NextID)
	}
	if _, _, err := runCLI(t, env.configPath, "set-next-id", "players", "2"); err == nil {
		t.Fatal("expected set-next-id below existing ids to fail")
	}
	mustRunJSON(t, env.configPath, &meta, "set-next-id", "players", "100")
	if meta.NextID != 100 {
		t.Fatalf("next_id = %d, want 100", meta.NextID)
	}

	var counts []struct {
		Domain string `json:"domain"`
		Rows   int    `json:"rows"`
	}
	mustRunJSON(t, env.configPath, &counts, "kv-counts")
	if len(counts) != 2 || counts[0].Rows == 0 {
		t.Fatalf("kv-counts = %+v", counts)
	}
}

func TestDuplicateCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	var registered []resolveResult
	mustRunJSON(t, env.configPath, &registered, "resolve", "tournaments", "--register", "Wimbledon Championships")
	if len(registered) != 1 || registered[0].Status != "pending" {
		t.Fatalf("register = %+v", registered)
	}

	if _, _, err := runCLI(t, env.configPath, "duplicate", "tournaments", registered[0].ProposalID); err == nil {
		t.Fatal("expected missing --target-id to fail")
	}
	out, _, err := runCLI(t, env.configPath, "duplicate", "tournaments", registered[0].ProposalID, "--target-id", "1")
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	requireContains(t, out, "Marked duplicate of 1; merged aliases: yes")

	var resolved []resolveResult
	mustRunJSON(t, env.configPath, &resolved, "resolve", "tournaments", "wimbledon championships")
	if len(resolved) != 1 || resolved[0].ID != 1 {
		t.Fatalf("resolve merged alias = %+v", resolved)
	}
}

func TestIngestCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	listing := `[{
		"id": 42,
		"competition": "Wimbledon",
		"competitors": ["Nadal, R.", "Djokovic, N."],
		"start_time_utc": "2026-07-01T12:00:00Z",
		"scope": "live",
		"markets": [{"id": 7, "name": "Winner", "selections": [
			{"name": "Nadal, R.", "odds": 2.1},
			{"name": "Djokovic, N.", "odds": 1.7}
		]}]
	}]`
	input := filepath.Join(t.TempDir(), "listing.json")
	if err := os.WriteFile(input, []byte(listing), 0o644); err != nil {
		t.Fatal(err)
	}
	rowsPath := filepath.Join(t.TempDir(), "rows.json")

	var result struct {
		Stats struct {
			Matches int `json:"matches"`
			Rows    int `json:"rows"`
		} `json:"stats"`
	}
	mustRunJSON(t, env.configPath, &result, "ingest", "--file", input, "--source", "bk1", "--out", rowsPath)
	if result.Stats.Matches != 1 || result.Stats.Rows != 2 {
		t.Fatalf("stats = %+v", result.Stats)
	}

	data, err := os.ReadFile(rowsPath)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	var rows []struct {
		TournamentID int64   `json:"tournament_id"`
		SelectionIDs []int64 `json:"selection_ids"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if len(rows) != 2 || rows[0].TournamentID != 1 || len(rows[1].SelectionIDs) != 1 || rows[1].SelectionIDs[0] != 2 {
		t.Fatalf("rows = %+v", rows)
	}

	if _, _, err := runCLI(t, env.configPath, "ingest", "--file", input); err == nil {
		t.Fatal("expected ingest without --source to fail")
	}
}

func TestSelftestCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	failures := filepath.Join(t.TempDir(), "failures.csv")

	var summary struct {
		RecordsTested int `json:"records_tested"`
		Misses        int `json:"misses"`
	}
	mustRunJSON(t, env.configPath, &summary, "selftest", "--out", failures)
	if summary.RecordsTested != 2 || summary.Misses != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if _, err := os.Stat(failures); !os.IsNotExist(err) {
		t.Fatalf("expected no failures file, stat err = %v", err)
	}
}
