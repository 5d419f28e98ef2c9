package migrations

// History is the schema of the run history database.
var History = []Migration{
	{
		Version:     1,
		Description: "runs and findings",
		Up: `
			CREATE TABLE runs (
				id TEXT PRIMARY KEY,
				repo TEXT NOT NULL,
				repo_path TEXT NOT NULL DEFAULT '',
				commit_hash TEXT NOT NULL DEFAULT '',
				narrator TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				score INTEGER NOT NULL CHECK(score >= 0 AND score <= 100),
				grade TEXT NOT NULL,
				breakdown TEXT NOT NULL
			);
			CREATE INDEX idx_runs_repo_created ON runs(repo, created_at);

			CREATE TABLE findings (
				run_id TEXT NOT NULL,
				seq INTEGER NOT NULL,
				category TEXT NOT NULL,
				detector TEXT NOT NULL DEFAULT '',
				severity TEXT NOT NULL,
				issue TEXT NOT NULL,
				files TEXT NOT NULL DEFAULT '[]',
				likely_symptoms TEXT NOT NULL DEFAULT '',
				recommended_fix TEXT NOT NULL DEFAULT '',
				PRIMARY KEY (run_id, seq),
				FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
			);
		`,
		Down: `
			DROP TABLE IF EXISTS findings;
			DROP TABLE IF EXISTS runs;
		`,
	},
}
