// Package seedtool generates realistic preference submissions and loads
// them into a running service over its HTTP API. It exists for demos and
// load testing, not for production data entry.
package seedtool

import "time"

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Season   string        // Season to seed
	NumUsers int           // Number of users to generate
	PoolSize int           // Number of distinct destination IDs to draw from
	MaxPrefs int           // Longest preference list to generate
	Workers  int           // Number of concurrent submitters
	Timeout  time.Duration // HTTP request timeout
	Gaps     bool          // Leave holes in the order sequence
	Verbose  bool          // Enable verbose logging
}

// submission mirrors the submit endpoint's request body.
type submission struct {
	Season      string   `json:"season"`
	UserID      string   `json:"userId"`
	Name        string   `json:"name"`
	Order       int      `json:"order"`
	RankedItems []string `json:"rankedItems"`
}

// Stats accumulates the outcome of a run.
type Stats struct {
	Generated int
	Submitted int
	Failed    int
	Elapsed   time.Duration
}
