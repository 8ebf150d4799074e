// Package screening ties rubric generation, job postings and resume evaluation together.
package screening

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/resume-rater/internal/ai"
	"github.com/spigell/resume-rater/internal/hiring"
	"github.com/spigell/resume-rater/internal/logger"
	"github.com/spigell/resume-rater/internal/prompt"
	"github.com/spigell/resume-rater/internal/rubric"
	"github.com/spigell/resume-rater/internal/storage"
)

// LLM decodes one prompt answer into a typed schema.
type LLM interface {
	Decode(ctx context.Context, prompt string, target ai.Schema) (string, error)
}

type JobRepository interface {
	Save(job *hiring.JobPosting) error
	Get(id string) (*hiring.JobPosting, error)
	List() ([]*hiring.JobPosting, error)
	Delete(id string) error
	Count() (int, error)
}

type ResumeRepository interface {
	Save(submissionID, applicant string, files []string) (string, error)
}

type TextExtractor interface {
	ExtractText(path string) (string, error)
}

// Deps are the collaborators of a Service.
type Deps struct {
	Logger      *zap.Logger
	LLM         LLM
	Jobs        JobRepository
	Evaluations storage.EvaluationLog
	Resumes     ResumeRepository
	Extractor   TextExtractor
}

// Service runs one operation at a time; mutating operations are serialized.
type Service struct {
	deps *Deps

	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

func New(deps *Deps) (*Service, error) {
	if deps == nil {
		return nil, fmt.Errorf("deps are not initialized")
	}
	if deps.LLM == nil || deps.Jobs == nil || deps.Evaluations == nil || deps.Resumes == nil || deps.Extractor == nil {
		return nil, fmt.Errorf("llm, job, evaluation, resume and extractor dependencies are required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Service{
		deps:  deps,
		now:   time.Now,
		newID: uuid.NewString,
	}, nil
}

// Draft is a generated rubric awaiting review.
type Draft struct {
	Criteria hiring.Criteria
	// CriteriaText is the editable "name:score" form of Criteria.
	CriteriaText string
	Prompt       string
}

// Total returns the points of the draft rubric.
func (d *Draft) Total() int {
	return d.Criteria.Total()
}

// GenerateRubric asks the LLM for a rubric and evaluator prompt for description.
// Nothing is persisted.
func (s *Service) GenerateRubric(ctx context.Context, description string) (*Draft, error) {
	if strings.TrimSpace(description) == "" {
		return nil, rubric.Invalid("job description is required")
	}

	var resp ai.RubricResponse
	raw, err := s.deps.LLM.Decode(ctx, prompt.BuildRubric(description), &resp)
	if err != nil {
		return nil, fmt.Errorf("generating rubric: %w", err)
	}

	criteria := resp.Criteria(raw)
	draft := &Draft{
		Criteria:     criteria,
		CriteriaText: rubric.Format(criteria),
		Prompt:       resp.Prompt,
	}

	s.deps.Logger.Info("rubric generated",
		zap.Int("items", len(criteria)),
		zap.Int("total", criteria.Total()),
	)
	return draft, nil
}

// JobInput is the recruiter-facing form of a posting.
type JobInput struct {
	Title        string
	Description  string
	CriteriaText string
	Prompt       string
}

func (in *JobInput) validate() (hiring.Criteria, error) {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(in.CriteriaText) == "" {
		missing = append(missing, "evaluation criteria")
	}
	if len(missing) > 0 {
		return nil, rubric.Invalid("required fields are missing: %s", strings.Join(missing, ", "))
	}

	return rubric.Parse(in.CriteriaText)
}

// CreateJob validates in and stores it as a new posting.
func (s *Service) CreateJob(_ context.Context, in JobInput) (*hiring.JobPosting, error) {
	criteria, err := in.validate()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job := &hiring.JobPosting{
		ID:                 s.newID(),
		Title:              in.Title,
		Description:        in.Description,
		EvaluationCriteria: criteria,
		Prompt:             in.Prompt,
	}
	if err := s.deps.Jobs.Save(job); err != nil {
		return nil, fmt.Errorf("saving job posting: %w", err)
	}

	s.deps.Logger.Info("job posting created", zap.String(logger.FieldJobID, job.ID), zap.String("title", job.Title))
	return job, nil
}

// UpdateJob overwrites an existing posting in place.
func (s *Service) UpdateJob(_ context.Context, id string, in JobInput) (*hiring.JobPosting, error) {
	criteria, err := in.validate()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.deps.Jobs.Get(id)
	if err != nil {
		return nil, err
	}

	job.Title = in.Title
	job.Description = in.Description
	job.EvaluationCriteria = criteria
	job.Prompt = in.Prompt

	if err := s.deps.Jobs.Save(job); err != nil {
		return nil, fmt.Errorf("saving job posting: %w", err)
	}

	s.deps.Logger.Info("job posting updated", zap.String(logger.FieldJobID, job.ID))
	return job, nil
}

// DeleteJob removes a posting. Its evaluations stay in the log.
func (s *Service) DeleteJob(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.deps.Jobs.Delete(id); err != nil {
		return err
	}

	s.deps.Logger.Info("job posting deleted", zap.String(logger.FieldJobID, id))
	return nil
}

func (s *Service) Job(id string) (*hiring.JobPosting, error) {
	return s.deps.Jobs.Get(id)
}

func (s *Service) Jobs() ([]*hiring.JobPosting, error) {
	return s.deps.Jobs.List()
}

// Submission is one applicant's resume for a posting.
type Submission struct {
	JobID         string
	ApplicantName string
	// Files are local PDF paths; several files are stored as one merged document.
	Files []string
}

// Submit stores the resume, scores it against the posting's rubric and appends
// the result to the evaluation log. Every call queries the LLM.
func (s *Service) Submit(ctx context.Context, sub Submission) (*hiring.EvaluationRecord, error) {
	var missing []string
	if strings.TrimSpace(sub.JobID) == "" {
		missing = append(missing, "job")
	}
	if strings.TrimSpace(sub.ApplicantName) == "" {
		missing = append(missing, "applicant name")
	}
	if len(sub.Files) == 0 {
		missing = append(missing, "resume file")
	}
	if len(missing) > 0 {
		return nil, rubric.Invalid("required fields are missing: %s", strings.Join(missing, ", "))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.deps.Jobs.Get(sub.JobID)
	if err != nil {
		return nil, err
	}

	submissionID := s.newID()
	log := logger.WithSubmissionFields(s.deps.Logger, job.ID, submissionID)

	resumePath, err := s.deps.Resumes.Save(submissionID, sub.ApplicantName, sub.Files)
	if err != nil {
		return nil, err
	}
	log.Debug("resume stored", zap.String("path", resumePath))

	text, err := s.deps.Extractor.ExtractText(resumePath)
	if err != nil {
		return nil, &storage.Error{Op: "extract resume text", Path: resumePath, Err: err}
	}

	resp := ai.NewEvaluationResponse(job.EvaluationCriteria)
	if _, err := s.deps.LLM.Decode(ctx, prompt.BuildEvaluation(job.Prompt, job.EvaluationCriteria, text), resp); err != nil {
		return nil, fmt.Errorf("evaluating resume: %w", err)
	}

	record := &hiring.EvaluationRecord{
		SubmissionID:        submissionID,
		JobID:               job.ID,
		JobTitle:            job.Title,
		ApplicantName:       sub.ApplicantName,
		TotalScore:          resp.TotalScore,
		Scores:              resp.Scores,
		Strengths:           resp.Strengths,
		Weaknesses:          resp.Weaknesses,
		InterviewQuestions:  resp.InterviewQuestions,
		ResumeFilePath:      resumePath,
		SubmissionTimestamp: s.now().Truncate(time.Second),
	}

	if err := s.deps.Evaluations.Append(record); err != nil {
		return nil, fmt.Errorf("recording evaluation: %w", err)
	}

	log.Info("resume evaluated", zap.Int("total_score", record.TotalScore))
	return record, nil
}

// Applicants returns the evaluations of one posting, or all when jobID is empty.
func (s *Service) Applicants(jobID string) ([]*hiring.EvaluationRecord, error) {
	return s.deps.Evaluations.List(jobID)
}

func (s *Service) Applicant(submissionID string) (*hiring.EvaluationRecord, error) {
	return s.deps.Evaluations.Get(submissionID)
}

// Stats summarizes stored data.
type Stats struct {
	Jobs        int
	Evaluations int
}

func (s *Service) Dashboard() (*Stats, error) {
	jobs, err := s.deps.Jobs.Count()
	if err != nil {
		return nil, err
	}
	evaluations, err := s.deps.Evaluations.Count()
	if err != nil {
		return nil, err
	}
	return &Stats{Jobs: jobs, Evaluations: evaluations}, nil
}
