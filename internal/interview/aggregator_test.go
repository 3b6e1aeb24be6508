package interview

import (
	"testing"

	"github.com/skillpath/interview-engine/internal/models"
)

func intPtr(v int) *int { return &v }

func fb(id string, ftype models.FeedbackType, rating int, tech, comm *int) *models.InterviewFeedback {
	return &models.InterviewFeedback{
		ID:              id,
		SessionID:       "session-1",
		Type:            ftype,
		Rating:          rating,
		TechnicalSkills: tech,
		Communication:   comm,
	}
}

func TestSummarizeSessionMeanRating(t *testing.T) {
	rows := []*models.InterviewFeedback{
		fb("f1", models.FeedbackLearner, 4, nil, nil),
		fb("f2", models.FeedbackPeer, 2, nil, nil),
		fb("f3", models.FeedbackPeer, 3, nil, nil),
	}

	summary := SummarizeSession("session-1", rows)
	if summary.Count != 3 {
		t.Errorf("expected count 3, got %d", summary.Count)
	}
	if summary.MeanRating == nil || *summary.MeanRating != 3.0 {
		t.Errorf("expected mean 3.0, got %v", summary.MeanRating)
	}
}

func TestSummarizeSessionEmpty(t *testing.T) {
	summary := SummarizeSession("session-1", nil)
	if summary.Count != 0 {
		t.Errorf("expected count 0, got %d", summary.Count)
	}
	if summary.MeanRating != nil {
		t.Errorf("expected no mean for empty input, got %v", *summary.MeanRating)
	}
	if summary.Dimensions.TechnicalSkills != nil {
		t.Error("expected no dimension means for empty input")
	}
	if summary.Records == nil {
		t.Error("expected non-nil records slice")
	}
}

func TestSummarizeSessionSparseDimensions(t *testing.T) {
	// One row carries technical_skills, the other does not: both count
	// toward the rating mean, only one toward the dimension mean.
	rows := []*models.InterviewFeedback{
		fb("f1", models.FeedbackPeer, 5, intPtr(4), nil),
		fb("f2", models.FeedbackPeer, 1, nil, intPtr(2)),
	}

	summary := SummarizeSession("session-1", rows)
	if summary.MeanRating == nil || *summary.MeanRating != 3.0 {
		t.Errorf("expected rating mean 3.0, got %v", summary.MeanRating)
	}
	if summary.Dimensions.TechnicalSkills == nil || *summary.Dimensions.TechnicalSkills != 4.0 {
		t.Errorf("expected technical_skills mean 4.0, got %v", summary.Dimensions.TechnicalSkills)
	}
	if summary.Dimensions.Communication == nil || *summary.Dimensions.Communication != 2.0 {
		t.Errorf("expected communication mean 2.0, got %v", summary.Dimensions.Communication)
	}
	if summary.Dimensions.ProblemSolving != nil {
		t.Error("expected no problem_solving mean")
	}
}

func TestSummarizeSessionOrderIndependent(t *testing.T) {
	a := fb("f1", models.FeedbackPeer, 5, intPtr(3), nil)
	b := fb("f2", models.FeedbackLearner, 2, intPtr(5), intPtr(1))
	c := fb("f3", models.FeedbackInstructor, 4, nil, intPtr(3))

	forward := SummarizeSession("session-1", []*models.InterviewFeedback{a, b, c})
	reverse := SummarizeSession("session-1", []*models.InterviewFeedback{c, b, a})

	if *forward.MeanRating != *reverse.MeanRating {
		t.Errorf("mean rating depends on order: %v vs %v", *forward.MeanRating, *reverse.MeanRating)
	}
	if *forward.Dimensions.TechnicalSkills != *reverse.Dimensions.TechnicalSkills {
		t.Error("technical_skills mean depends on order")
	}
	if *forward.Dimensions.Communication != *reverse.Dimensions.Communication {
		t.Error("communication mean depends on order")
	}
}

func TestSummarizeUserGroupsByType(t *testing.T) {
	rows := []*models.InterviewFeedback{
		fb("f1", models.FeedbackLearner, 3, nil, nil),
		fb("f2", models.FeedbackPeer, 5, nil, nil),
		fb("f3", models.FeedbackPeer, 4, nil, nil),
	}

	summary := SummarizeUser("learner-1", rows)
	if summary.Count != 3 {
		t.Errorf("expected count 3, got %d", summary.Count)
	}
	if len(summary.ByType) != 2 {
		t.Fatalf("expected 2 type groups, got %d", len(summary.ByType))
	}

	peer := summary.ByType[models.FeedbackPeer]
	if peer == nil || peer.Count != 2 {
		t.Fatalf("expected 2 peer rows, got %+v", peer)
	}
	if peer.MeanRating == nil || *peer.MeanRating != 4.5 {
		t.Errorf("expected peer mean 4.5, got %v", peer.MeanRating)
	}

	learner := summary.ByType[models.FeedbackLearner]
	if learner == nil || learner.Count != 1 || *learner.MeanRating != 3.0 {
		t.Errorf("unexpected learner group: %+v", learner)
	}
}

func TestSummarizeUserEmpty(t *testing.T) {
	summary := SummarizeUser("learner-1", nil)
	if summary.Count != 0 {
		t.Errorf("expected count 0, got %d", summary.Count)
	}
	if len(summary.ByType) != 0 {
		t.Errorf("expected no type groups, got %d", len(summary.ByType))
	}
}
