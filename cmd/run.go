package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-rater/internal/ai"
	"github.com/spigell/resume-rater/internal/ai/gemini"
	"github.com/spigell/resume-rater/internal/ai/openai"
	"github.com/spigell/resume-rater/internal/config"
	"github.com/spigell/resume-rater/internal/document"
	"github.com/spigell/resume-rater/internal/hiring"
	"github.com/spigell/resume-rater/internal/logger"
	"github.com/spigell/resume-rater/internal/screening"
	"github.com/spigell/resume-rater/internal/secrets"
	"github.com/spigell/resume-rater/internal/storage"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var errAborted = errors.New("aborted by user")

// runtime is what every command works with.
type runtime struct {
	logger  *zap.Logger
	config  *config.Config
	service *screening.Service

	evaluations storage.EvaluationLog
}

// newRuntime builds the logger, config and service. When withLLM is false no
// credential is required and LLM operations fail if called.
func newRuntime(ctx context.Context, withLLM bool) *runtime {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	cfg, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting with config",
		zap.String("provider", string(cfg.ProviderKind())),
		zap.String("data_dir", cfg.DataDir),
		zap.String("evaluation_log", cfg.Storage.EvaluationLog),
	)

	jobs, err := storage.NewJobStore(cfg.Path("job_postings"))
	if err != nil {
		logger.Fatal("opening job postings", zap.Error(err))
	}

	resumes, err := storage.NewResumeStore(cfg.Path("pdf"))
	if err != nil {
		logger.Fatal("opening resume store", zap.Error(err))
	}

	evaluations, err := newEvaluationLog(cfg)
	if err != nil {
		logger.Fatal("opening evaluation log", zap.Error(err))
	}

	var llm screening.LLM = unavailableLLM{}
	if withLLM {
		provider, err := newProvider(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("configuring llm provider",
				zap.Error(err),
				zap.String("hint", "set GEMINI_API_KEY or OPENAI_API_KEY, or add it to "+cfg.SecretsFile),
			)
		}
		llm = ai.NewClient(provider, logger, cfg.MaxLogLength)
	}

	service, err := screening.New(&screening.Deps{
		Logger:      logger,
		LLM:         llm,
		Jobs:        jobs,
		Evaluations: evaluations,
		Resumes:     resumes,
		Extractor:   document.PDF{},
	})
	if err != nil {
		logger.Fatal("creating screening service", zap.Error(err))
	}

	return &runtime{logger: logger, config: cfg, service: service, evaluations: evaluations}
}

func (r *runtime) Close() {
	if err := r.evaluations.Close(); err != nil {
		r.logger.Warn("closing evaluation log", zap.Error(err))
	}
	r.logger.Sync()
}

func newEvaluationLog(cfg *config.Config) (storage.EvaluationLog, error) {
	switch cfg.Storage.EvaluationLog {
	case config.EvaluationLogSQLite:
		return storage.NewSQLiteLog(cfg.Path("evaluations.db"))
	default:
		return storage.NewCSVLog(cfg.Path("csv", "resume_evaluations.csv"))
	}
}

func newProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ai.Provider, error) {
	store, err := secrets.OpenFileStore(cfg.SecretsFile)
	if err != nil {
		return nil, &config.Error{Reason: "reading secret store", Err: err}
	}

	apiKey, err := cfg.APIKey(secrets.Env{}, store)
	if err != nil {
		return nil, err
	}

	switch cfg.ProviderKind() {
	case ai.ProviderOpenAI:
		return openai.NewProvider(openai.Options{
			BaseURL: cfg.OpenAI.BaseURL,
			APIKey:  apiKey,
			Model:   cfg.OpenAI.Model,
			Timeout: cfg.OpenAI.Timeout,
		}, logger)
	default:
		return gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, logger)
	}
}

// unavailableLLM stands in for commands that never talk to a provider.
type unavailableLLM struct{}

func (unavailableLLM) Decode(context.Context, string, ai.Schema) (string, error) {
	return "", errors.New("llm provider is not configured for this command")
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func confirm(label string) error {
	prompt := promptui.Select{
		Label: label,
		Items: []string{PromptYes, PromptNo},
	}

	_, answer, err := prompt.Run()
	if err != nil {
		return err
	}
	if answer != PromptYes {
		return errAborted
	}
	return nil
}

func selectJob(jobs []*hiring.JobPosting) (*hiring.JobPosting, error) {
	if len(jobs) == 0 {
		return nil, errors.New("there are no job postings; create one with 'jobs generate --save' or 'jobs create'")
	}

	items := make([]string, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, fmt.Sprintf("%s  %s", job.ID, job.Title))
	}

	prompt := promptui.Select{
		Label: "Choose a job posting and press ENTER",
		Items: items,
		Size:  10,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(items[index]), strings.ToLower(input))
		},
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return nil, err
	}
	return jobs[idx], nil
}

// fail reports a command error. Aborts are not errors.
func (r *runtime) fail(msg string, err error) {
	if errors.Is(err, errAborted) || errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
		r.logger.Info("exiting", zap.String("reason", err.Error()))
		return
	}
	r.logger.Fatal(msg, zap.Error(err))
}
