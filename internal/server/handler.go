package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/gateway"
	"careerpilot/internal/observability"
	"careerpilot/internal/types"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// createAnalyzeHandler wraps the analyze handler with observability
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("careerpilot.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		var req AnalyzeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.validateRequest(&req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "analyze"),
		)

		metrics := om.GetMetrics()
		var result *types.AnalysisResult
		err := metrics.TrackOperation(ctx, "analyze", func(ctx context.Context) *observability.OperationResult {
			var opErr error
			result, opErr = s.Pipeline.Analyze(ctx, types.AnalyzeInput{
				ResumeText:     req.ResumeText,
				JobDescription: req.JobDescription,
			})
			return &observability.OperationResult{Error: opErr}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "analysis_completed", false, om,
				attribute.String("error", err.Error()))
			s.writeDomainError(w, err, "Failed to analyze resume")
			return
		}

		// Partial results still return 200; per-stage outcomes tell
		// the caller what degraded.
		metrics.RecordBusinessMetric(ctx, "analysis_completed", true, om,
			attribute.String("state", string(result.State)),
			attribute.Int("ats.score", result.ATS.Score))
		s.recordStageFallbacks(ctx, metrics, om, result)

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("analysis.state", string(result.State)),
			attribute.Int("ats.score", result.ATS.Score),
		)

		writeJSONResponse(w, result, span)
	}
}

// createRankHandler wraps the rank-candidates handler with observability
func (s *Server) createRankHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("careerpilot.api")
		ctx, span := tracer.Start(ctx, "api.rank_candidates")
		defer span.End()

		var req RankRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.validateRequest(&req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.candidate_count", len(req.Candidates)),
			attribute.Int("request.top_k", req.TopK),
			attribute.String("operation", "rank_candidates"),
		)

		metrics := om.GetMetrics()
		var ranked []types.RankedCandidate
		err := metrics.TrackOperation(ctx, "rank_candidates", func(ctx context.Context) *observability.OperationResult {
			var opErr error
			ranked, opErr = s.Ranker.Rank(ctx, types.RankInput{
				JobDescription: req.JobDescription,
				Candidates:     req.Candidates,
				TopK:           req.TopK,
			})
			return &observability.OperationResult{Error: opErr}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "candidates_ranked", false, om)
			s.writeDomainError(w, err, "Failed to rank candidates")
			return
		}

		metrics.RecordBusinessMetric(ctx, "candidates_ranked", true, om,
			attribute.Int("candidates.submitted", len(req.Candidates)),
			attribute.Int("candidates.returned", len(ranked)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.ranked_count", len(ranked)),
		)

		writeJSONResponse(w, ranked, span)
	}
}

// createRegenerateHandler wraps the regenerate handler with observability
func (s *Server) createRegenerateHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("careerpilot.api")
		ctx, span := tracer.Start(ctx, "api.regenerate")
		defer span.End()

		var req RegenerateRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.validateRequest(&req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.String("operation", "regenerate"),
		)

		metrics := om.GetMetrics()
		var analysis *types.AnalysisResult
		var doc *types.ResumeDocument
		err := metrics.TrackOperation(ctx, "regenerate", func(ctx context.Context) *observability.OperationResult {
			var opErr error
			analysis, opErr = s.Pipeline.Analyze(ctx, types.AnalyzeInput{
				ResumeText:     req.ResumeText,
				JobDescription: req.JobDescription,
			})
			if opErr != nil {
				return &observability.OperationResult{Error: opErr}
			}
			doc, opErr = s.Pipeline.Regenerate(ctx, analysis)
			return &observability.OperationResult{Error: opErr}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "resume_regenerated", false, om)
			s.writeDomainError(w, err, "Failed to regenerate resume")
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_regenerated", true, om,
			attribute.String("summary.source", string(doc.SummarySource)),
			attribute.Int("sections.count", len(doc.Sections)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("summary.source", string(doc.SummarySource)),
		)

		writeJSONResponse(w, RegenerateResponse{
			AnalysisID: analysis.ID,
			State:      analysis.State,
			Resume:     doc,
		}, span)
	}
}

// recordStageFallbacks counts pipeline stages that were served locally
// after a gateway failure, or not served at all.
func (s *Server) recordStageFallbacks(ctx context.Context, metrics *observability.Metrics, om *observability.ObservabilityManager, result *types.AnalysisResult) {
	for stage, outcome := range result.Stages {
		if outcome.Status == types.StageOK {
			continue
		}
		metrics.RecordBusinessMetric(ctx, "stage_fallback", outcome.Status == types.StageFallback, om,
			attribute.String("stage", stage),
			attribute.String("status", string(outcome.Status)))
	}
}

// validateRequest applies struct tag validation to a parsed request body
func (s *Server) validateRequest(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0]
		switch field.Tag() {
		case "required":
			return apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest,
				field.Field()+" field is required", nil)
		case "min":
			return apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest,
				field.Field()+" is below the minimum of "+field.Param(), nil)
		}
		return apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest,
			field.Field()+" is invalid", nil)
	}
	return err
}

// writeDomainError maps application errors onto HTTP status codes
func (s *Server) writeDomainError(w http.ResponseWriter, err error, fallbackMessage string) {
	if gwErr, ok := gateway.AsError(err); ok {
		appErr := gwErr.AppError()
		writeErrorResponse(w, appErr.Code, appErr.Message, http.StatusBadGateway)
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation:
			writeErrorResponse(w, appErr.Code, appErr.Message, http.StatusBadRequest)
			return
		case apperrors.ErrorTypeGateway:
			writeErrorResponse(w, appErr.Code, appErr.Message, http.StatusBadGateway)
			return
		}
	}
	s.Logger.LogError(err, fallbackMessage)
	writeErrorResponse(w, fallbackMessage, err.Error(), http.StatusInternalServerError)
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// writeJSONResponse encodes a success payload, recording encode failures on the span
func writeJSONResponse(w http.ResponseWriter, payload any, span oteltrace.Span) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		span.RecordError(err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
