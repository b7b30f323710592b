package models

import (
	"time"

	"github.com/lib/pq"
)

// ResourceType names a bookable dimension a session may occupy.
type ResourceType string

const (
	ResourceInstructor ResourceType = "INSTRUCTOR"
	ResourceClassroom  ResourceType = "CLASSROOM"
	ResourceCohort     ResourceType = "COHORT"
)

// Instructor is a teaching resource with optional experience metadata.
type Instructor struct {
	ID              string         `db:"id" json:"id"`
	Name            string         `db:"name" json:"name"`
	Specializations pq.StringArray `db:"specializations" json:"specializations"`
	ExperienceYears *float64       `db:"experience_years" json:"experience_years,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// Classroom is a room resource; Capacity is unknown when nil.
type Classroom struct {
	ID              string         `db:"id" json:"id"`
	Name            string         `db:"name" json:"name"`
	Specializations pq.StringArray `db:"specializations" json:"specializations"`
	Capacity        *int           `db:"capacity" json:"capacity,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// Subject describes what a session teaches; Name drives specialization matching.
type Subject struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
