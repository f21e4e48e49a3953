package llm

// TaskType names a category of AI work so each can be routed to its
// best-fit provider and model.
type TaskType string

const (
	TaskContentGeneration    TaskType = "content_generation"
	TaskAssessmentGeneration TaskType = "assessment_generation"
	TaskSimulationGeneration TaskType = "simulation_generation"
	TaskRoleplay             TaskType = "roleplay"
	TaskSummarization        TaskType = "summarization"
	TaskEmbedding            TaskType = "embedding"
	TaskGrading              TaskType = "grading"
	TaskAnalysis             TaskType = "analysis"
	TaskChat                 TaskType = "chat"
)

// TaskTypes lists every routable task type.
var TaskTypes = []TaskType{
	TaskContentGeneration,
	TaskAssessmentGeneration,
	TaskSimulationGeneration,
	TaskRoleplay,
	TaskSummarization,
	TaskEmbedding,
	TaskGrading,
	TaskAnalysis,
	TaskChat,
}
