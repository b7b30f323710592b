package service

import (
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/course-scheduler/internal/models"
)

// ScoringPolicy holds the tunable recommendation weights.
type ScoringPolicy struct {
	SpecializationWeight float64
	ExperienceWeight     float64
	DefaultLimit         int
}

// DefaultScoringPolicy is 2 points per matching keyword and 0.1 per experience year.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{SpecializationWeight: 2, ExperienceWeight: 0.1, DefaultLimit: 5}
}

// RecommendationCandidate describes the slot a resource is wanted for.
type RecommendationCandidate struct {
	SessionID   string
	RoundID     string
	Date        time.Time
	StartTime   models.TimeOfDay
	EndTime     models.TimeOfDay
	SubjectID   string
	SubjectName string
	Headcount   int
}

// RecommendationResult carries the truncated rankings and their full sizes.
type RecommendationResult struct {
	Instructors      []models.Recommendation `json:"instructors"`
	Classrooms       []models.Recommendation `json:"classrooms"`
	TotalInstructors int                     `json:"total_instructors"`
	TotalClassrooms  int                     `json:"total_classrooms"`
}

// RecommendationEngine ranks available resources for a candidate session.
type RecommendationEngine struct {
	detector *ConflictDetector
	policy   ScoringPolicy
}

// NewRecommendationEngine builds an engine; zero policy fields fall back to defaults.
func NewRecommendationEngine(detector *ConflictDetector, policy ScoringPolicy) *RecommendationEngine {
	if detector == nil {
		detector = NewConflictDetector()
	}
	defaults := DefaultScoringPolicy()
	if policy.SpecializationWeight == 0 && policy.ExperienceWeight == 0 {
		policy.SpecializationWeight = defaults.SpecializationWeight
		policy.ExperienceWeight = defaults.ExperienceWeight
	}
	if policy.DefaultLimit <= 0 {
		policy.DefaultLimit = defaults.DefaultLimit
	}
	return &RecommendationEngine{detector: detector, policy: policy}
}

// Policy returns the effective scoring policy.
func (e *RecommendationEngine) Policy() ScoringPolicy {
	return e.policy
}

// Recommend ranks every available instructor and classroom, then truncates to limit.
// A limit <= 0 uses the policy default.
func (e *RecommendationEngine) Recommend(
	candidate RecommendationCandidate,
	instructors []models.Instructor,
	classrooms []models.Classroom,
	existing []models.Session,
	limit int,
) (*RecommendationResult, error) {
	probe := models.Session{
		ID:        candidate.SessionID,
		RoundID:   candidate.RoundID,
		Date:      candidate.Date,
		StartTime: candidate.StartTime,
		EndTime:   candidate.EndTime,
		SubjectID: candidate.SubjectID,
		Status:    models.SessionStatusScheduled,
	}
	if err := ValidateInterval(probe); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = e.policy.DefaultLimit
	}

	rankedInstructors, err := e.rankInstructors(probe, candidate.SubjectName, instructors, existing)
	if err != nil {
		return nil, err
	}
	rankedClassrooms, err := e.rankClassrooms(probe, candidate.Headcount, classrooms, existing)
	if err != nil {
		return nil, err
	}

	return &RecommendationResult{
		Instructors:      truncate(rankedInstructors, limit),
		Classrooms:       truncate(rankedClassrooms, limit),
		TotalInstructors: len(rankedInstructors),
		TotalClassrooms:  len(rankedClassrooms),
	}, nil
}

func (e *RecommendationEngine) rankInstructors(probe models.Session, subjectName string, pool []models.Instructor, existing []models.Session) ([]models.Recommendation, error) {
	ranked := make([]models.Recommendation, 0, len(pool))
	for _, instructor := range pool {
		conflicts, err := e.detector.Detect(probe, existing, ResourceSelector{InstructorID: instructor.ID})
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			continue
		}
		reasons := []string{models.ReasonAvailable}
		matches := SpecializationMatches(instructor.Specializations, subjectName)
		score := float64(matches) * e.policy.SpecializationWeight
		if matches > 0 {
			reasons = append(reasons, models.ReasonSpecializationMatch)
		}
		if instructor.ExperienceYears != nil && *instructor.ExperienceYears > 0 {
			score += *instructor.ExperienceYears * e.policy.ExperienceWeight
			reasons = append(reasons, models.ReasonExperience)
		}
		ranked = append(ranked, models.Recommendation{
			ResourceID:  instructor.ID,
			Name:        instructor.Name,
			Score:       score,
			ReasonCodes: reasons,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ResourceID < ranked[j].ResourceID
	})
	return ranked, nil
}

func (e *RecommendationEngine) rankClassrooms(probe models.Session, headcount int, pool []models.Classroom, existing []models.Session) ([]models.Recommendation, error) {
	usage := make(map[string]int)
	for _, s := range existing {
		if s.Cancelled() || s.ClassroomID == "" || s.SubjectID != probe.SubjectID {
			continue
		}
		usage[s.ClassroomID]++
	}

	ranked := make([]models.Recommendation, 0, len(pool))
	for _, room := range pool {
		if headcount > 0 && room.Capacity != nil && *room.Capacity < headcount {
			continue
		}
		conflicts, err := e.detector.Detect(probe, existing, ResourceSelector{ClassroomID: room.ID})
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			continue
		}
		reasons := []string{models.ReasonAvailable}
		if headcount > 0 && room.Capacity != nil {
			reasons = append(reasons, models.ReasonCapacityOK)
		}
		if usage[room.ID] > 0 {
			reasons = append(reasons, models.ReasonPriorUsage)
		}
		ranked = append(ranked, models.Recommendation{
			ResourceID:  room.ID,
			Name:        room.Name,
			Score:       float64(usage[room.ID]),
			ReasonCodes: reasons,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].Name != ranked[j].Name {
			return ranked[i].Name < ranked[j].Name
		}
		return ranked[i].ResourceID < ranked[j].ResourceID
	})
	return ranked, nil
}

// SpecializationMatches counts keywords that contain, or are contained in, the subject name.
func SpecializationMatches(keywords []string, subject string) int {
	subject = strings.ToLower(strings.TrimSpace(subject))
	if subject == "" {
		return 0
	}
	matches := 0
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		if strings.Contains(subject, keyword) || strings.Contains(keyword, subject) {
			matches++
		}
	}
	return matches
}

func truncate(items []models.Recommendation, limit int) []models.Recommendation {
	if len(items) <= limit {
		return items
	}
	out := make([]models.Recommendation, limit)
	copy(out, items[:limit])
	return out
}
