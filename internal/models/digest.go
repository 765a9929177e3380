package models

import "time"

// Digest summarizes the robots archived over a reporting period.
type Digest struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Since       time.Time     `json:"since"`
	Robots      []RobotRecord `json:"robots"`
}

// Count returns the number of robots in the digest.
func (d *Digest) Count() int {
	return len(d.Robots)
}
