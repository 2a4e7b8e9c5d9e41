package store

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,
    source_path TEXT,
    transaction_count INTEGER NOT NULL,
    min_support INTEGER NOT NULL,
    max_level INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS itemsets (
    run_id TEXT NOT NULL,
    level INTEGER NOT NULL,
    items TEXT NOT NULL,
    count INTEGER NOT NULL,
    PRIMARY KEY (run_id, level, items),
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS rules (
    run_id TEXT NOT NULL,
    level INTEGER NOT NULL,
    position INTEGER NOT NULL,
    antecedent TEXT NOT NULL,
    consequent TEXT NOT NULL,
    all_freq INTEGER NOT NULL,
    left_freq INTEGER NOT NULL,
    confidence REAL NOT NULL,
    PRIMARY KEY (run_id, level, position),
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_itemsets_run_level ON itemsets(run_id, level);
CREATE INDEX IF NOT EXISTS idx_rules_run_level ON rules(run_id, level);
CREATE INDEX IF NOT EXISTS idx_rules_antecedent ON rules(run_id, antecedent);
`
