// Package summary defines the domain types and provider interfaces shared by
// the candidate-summary service: ATS records, interview and transcript
// sources, prompt configurations, run logs, bulk jobs, and the stores and
// queues that persist them.
package summary
