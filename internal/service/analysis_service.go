package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/drbn68/ai-medical-imaging-agent/internal/domain"
	"github.com/drbn68/ai-medical-imaging-agent/internal/llm"
	"github.com/drbn68/ai-medical-imaging-agent/internal/search"
)

// State of one pipeline run. The pipeline is a straight line with a single
// branch: analyze, decide whether references would help, optionally search,
// then merge.
type State int

const (
	StateAnalyze State = iota
	StateDecide
	StateResearch
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAnalyze:
		return "analyze"
	case StateDecide:
		return "decide"
	case StateResearch:
		return "research"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ResearchPredicate decides from the completion text whether a reference
// search is warranted.
type ResearchPredicate func(analysis string) bool

var researchMarkers = []string{
	"research context",
	"recent literature",
	"treatment protocol",
	"further reading",
	"recommended search",
}

// DefaultResearchPredicate triggers when the completion text carries any of
// the research-context markers the analysis prompt asks for.
func DefaultResearchPredicate(analysis string) bool {
	lower := strings.ToLower(analysis)
	for _, marker := range researchMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

type AnalysisService interface {
	Analyze(ctx context.Context, creds domain.Credentials, img domain.UploadedImage) (*domain.Report, error)
}

type analysisService struct {
	completion    llm.Client
	search        search.Client
	needsResearch ResearchPredicate
	log           *zap.Logger
}

func NewAnalysisService(completion llm.Client, searcher search.Client, predicate ResearchPredicate, log *zap.Logger) AnalysisService {
	if predicate == nil {
		predicate = DefaultResearchPredicate
	}
	return &analysisService{
		completion:    completion,
		search:        searcher,
		needsResearch: predicate,
		log:           log,
	}
}

// run holds the mutable state of a single in-flight pipeline. It is created
// per request and discarded with the response.
type run struct {
	id       string
	creds    domain.Credentials
	img      domain.UploadedImage
	analysis string
	refs     []domain.SearchResult
	err      error
}

func (s *analysisService) Analyze(ctx context.Context, creds domain.Credentials, img domain.UploadedImage) (*domain.Report, error) {
	if strings.TrimSpace(creds.APIKey) == "" {
		return nil, domain.ErrMissingCredential
	}

	r := &run{
		id:    uuid.New().String(),
		creds: creds,
		img:   img,
	}

	state := StateAnalyze
	for state != StateDone && state != StateFailed {
		next := state
		switch state {
		case StateAnalyze:
			next = s.analyze(ctx, r)
		case StateDecide:
			next = s.decide(r)
		case StateResearch:
			next = s.research(ctx, r)
		}
		s.log.Debug("Pipeline transition",
			zap.String("id", r.id),
			zap.Stringer("from", state),
			zap.Stringer("to", next))
		state = next
	}

	if state == StateFailed {
		s.log.Error("Pipeline failed",
			zap.String("id", r.id),
			zap.String("filename", img.Filename),
			zap.Error(r.err))
		return nil, r.err
	}

	report := &domain.Report{
		ID:         r.id,
		Filename:   img.Filename,
		Analysis:   r.analysis,
		References: r.refs,
		Text:       mergeReport(r.analysis, r.refs),
		CreatedAt:  time.Now(),
	}

	s.log.Info("Pipeline completed",
		zap.String("id", r.id),
		zap.String("filename", img.Filename),
		zap.Int("references", len(r.refs)))

	return report, nil
}

func (s *analysisService) analyze(ctx context.Context, r *run) State {
	req := domain.AnalysisRequest{
		Instruction: llm.AnalysisInstruction,
		ImageURL:    r.img.DataURL(),
	}

	analysis, err := s.completion.Analyze(ctx, r.creds, req)
	if err != nil {
		// Completion failure is fatal: no partial report is ever produced.
		r.err = err
		return StateFailed
	}
	r.analysis = analysis
	return StateDecide
}

func (s *analysisService) decide(r *run) State {
	if s.needsResearch(r.analysis) {
		return StateResearch
	}
	return StateDone
}

func (s *analysisService) research(ctx context.Context, r *run) State {
	query := buildQuery(r.analysis)

	refs, err := s.search.Search(ctx, query)
	if err != nil {
		// Search failure is recoverable; the report ships without references.
		s.log.Warn("Reference search failed, continuing without references",
			zap.String("id", r.id),
			zap.Error(err))
		return StateDone
	}
	r.refs = refs
	return StateDone
}

// buildQuery derives a short search query from the completion output: the
// first content line of the Diagnostic Assessment section, or the first
// non-empty line of the whole analysis as a fallback.
func buildQuery(analysis string) string {
	section := sectionBody(analysis, "diagnostic assessment")
	line := firstContentLine(section)
	if line == "" {
		line = firstContentLine(analysis)
	}
	if line == "" {
		return ""
	}
	return line + " recent medical literature"
}

func sectionBody(text, header string) string {
	lines := strings.Split(text, "\n")
	start := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.Contains(strings.ToLower(trimmed), header) {
			start = i + 1
			break
		}
	}
	if start == -1 {
		return ""
	}
	var body []string
	for _, line := range lines[start:] {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			break
		}
		body = append(body, line)
	}
	return strings.Join(body, "\n")
}

func firstContentLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• \t")
		line = strings.Trim(line, "*_` ")
		if line != "" {
			return line
		}
	}
	return ""
}

// mergeReport appends the references section to the analysis text. With no
// references the report is the analysis verbatim.
func mergeReport(analysis string, refs []domain.SearchResult) string {
	if len(refs) == 0 {
		return analysis
	}

	var b strings.Builder
	b.WriteString(analysis)
	b.WriteString("\n\n### References\n")
	for _, ref := range refs {
		if ref.Snippet != "" {
			fmt.Fprintf(&b, "- [%s](%s): %s\n", ref.Title, ref.Link, ref.Snippet)
		} else {
			fmt.Fprintf(&b, "- [%s](%s)\n", ref.Title, ref.Link)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
