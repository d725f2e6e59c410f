package planner

import "researcher/internal/domain"

var steps = []string{
	"Analyze the question and break it into sub-questions",
	"Retrieve top-k relevant chunks from local documents and web (Wikipedia)",
	"Summarize each retrieved chunk and attach its source",
	"Synthesize the summaries into a final structured report with citations",
}

// CreatePlan returns the research plan for a question. The plan is the
// same for every question.
func CreatePlan(question string) domain.Plan {
	plan := make(domain.Plan, len(steps))
	copy(plan, steps)
	return plan
}
