package clickhouse

import "fmt"

// Schema returns the idempotent DDL for the record tables. ReplacingMergeTree
// keyed on id keeps the latest version of a re-delivered or settled record.
func Schema(database string) []string {
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.bets (
    id String,
    amount Float64,
    odds Float64,
    status LowCardinality(String),
    event String,
    ts DateTime64(3, 'UTC'),
    ingested_at DateTime64(3, 'UTC') DEFAULT now64(3)
) ENGINE = ReplacingMergeTree(ingested_at)
ORDER BY id`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.predictions (
    id String,
    event String,
    status LowCardinality(String),
    confidence Float64,
    ts DateTime64(3, 'UTC'),
    ingested_at DateTime64(3, 'UTC') DEFAULT now64(3)
) ENGINE = ReplacingMergeTree(ingested_at)
ORDER BY id`, database),
	}
}
