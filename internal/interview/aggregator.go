package interview

import (
	"github.com/skillpath/interview-engine/internal/models"
)

// SummarizeSession computes the summary of one session's feedback rows.
// The mean rating is omitted when there are no rows, and each dimension
// mean is computed only over rows carrying that dimension. The result
// depends only on the row set, not its order.
func SummarizeSession(sessionID string, rows []*models.InterviewFeedback) *models.SessionSummary {
	if rows == nil {
		rows = []*models.InterviewFeedback{}
	}
	summary := &models.SessionSummary{
		SessionID: sessionID,
		Count:     len(rows),
		Records:   rows,
	}
	summary.MeanRating = meanRating(rows)
	summary.Dimensions = dimensionMeans(rows)
	return summary
}

// SummarizeUser aggregates feedback across all sessions where the user
// was the interviewee, grouped by feedback type so self-reports stay
// apart from instructor and peer assessments.
func SummarizeUser(userID string, rows []*models.InterviewFeedback) *models.UserSummary {
	byType := make(map[models.FeedbackType][]*models.InterviewFeedback)
	for _, row := range rows {
		byType[row.Type] = append(byType[row.Type], row)
	}

	summary := &models.UserSummary{
		UserID: userID,
		Count:  len(rows),
		ByType: make(map[models.FeedbackType]*models.TypeSummary, len(byType)),
	}
	for ft, group := range byType {
		summary.ByType[ft] = &models.TypeSummary{
			Count:      len(group),
			MeanRating: meanRating(group),
			Dimensions: dimensionMeans(group),
		}
	}
	return summary
}

func meanRating(rows []*models.InterviewFeedback) *float64 {
	if len(rows) == 0 {
		return nil
	}
	sum := 0
	for _, row := range rows {
		sum += row.Rating
	}
	mean := float64(sum) / float64(len(rows))
	return &mean
}

func dimensionMeans(rows []*models.InterviewFeedback) models.DimensionMeans {
	return models.DimensionMeans{
		TechnicalSkills: meanOf(rows, func(f *models.InterviewFeedback) *int { return f.TechnicalSkills }),
		Communication:   meanOf(rows, func(f *models.InterviewFeedback) *int { return f.Communication }),
		ProblemSolving:  meanOf(rows, func(f *models.InterviewFeedback) *int { return f.ProblemSolving }),
	}
}

// meanOf averages one optional dimension over the rows where it is set
func meanOf(rows []*models.InterviewFeedback, pick func(*models.InterviewFeedback) *int) *float64 {
	sum, n := 0, 0
	for _, row := range rows {
		if v := pick(row); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := float64(sum) / float64(n)
	return &mean
}
