package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dasmlab/sensebridge/pkg/lang"
	"github.com/dasmlab/sensebridge/pkg/model"
	"github.com/dasmlab/sensebridge/pkg/replies"
)

// Endpoint names used in logs and metrics.
const (
	EndpointAnalyze   = "analyze"
	EndpointTranslate = "translate"
)

// AnalysisResult is the canonical outcome of an /analyze request.
type AnalysisResult struct {
	DetectedLang string
	// SourceLang is the effective source language: the caller's value, or
	// the detected one when the caller sent AUTO.
	SourceLang  string
	UserLang    string
	Translation string
	Summary     string
	// Risks is never nil.
	Risks   []string
	Replies replies.ToneSet
}

// TranslateResult is the canonical outcome of a /translate request.
type TranslateResult struct {
	// DetectedLang echoes the declared source language; nothing is detected.
	DetectedLang string
	Translation  string
}

// AnalysisService turns letters into summaries, risks, replies and
// translations using a Generator. It keeps no per-request state, so a
// single instance serves concurrent requests.
type AnalysisService struct {
	// Generator is the model backend (OpenAI or Ollama).
	Generator model.Generator

	// Logger for service operations.
	Logger *logrus.Logger
}

// NewAnalysisService creates a new AnalysisService instance.
func NewAnalysisService(generator model.Generator, logger *logrus.Logger) *AnalysisService {
	if logger == nil {
		logger = logrus.New()
	}

	return &AnalysisService{
		Generator: generator,
		Logger:    logger,
	}
}

// Analyze runs the two-stage pipeline: an analysis call whose detected
// language decides whether a second, translation call is needed.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	log := s.Logger.WithFields(logrus.Fields{
		"endpoint":    EndpointAnalyze,
		"source_lang": req.SourceLang,
		"user_lang":   req.UserLang,
		"tone":        req.Tone,
		"text_length": len(req.Text),
	})
	log.Info("Analyze request received")

	fallback := replies.For(req.UserLang, req.Tone)

	if strings.TrimSpace(req.Text) == "" {
		emptyTextTotal.WithLabelValues(EndpointAnalyze).Inc()
		log.Debug("Empty text, returning fallback replies")
		return &AnalysisResult{
			DetectedLang: lang.Unknown,
			SourceLang:   effectiveSource(req.SourceLang, lang.Unknown),
			UserLang:     req.UserLang,
			Summary:      replies.EmptySummary(req.UserLang),
			Risks:        []string{},
			Replies:      fallback,
		}, nil
	}

	if err := s.Generator.Configured(); err != nil {
		log.WithError(err).Error("Model backend not configured")
		return nil, err
	}

	startTime := time.Now()

	raw, err := s.Generator.Generate(ctx, model.Request{
		Prompt:          buildAnalysisPrompt(req.Text, req.UserLang),
		Format:          model.FormatJSONObject,
		MaxOutputTokens: model.AnalysisTokens,
	})
	if err != nil {
		log.WithError(err).Error("Analysis call failed")
		return nil, err
	}

	jsonText, err := model.ExtractJSON(raw)
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"output_length": len(raw),
		}).Error("No JSON object in analysis output")
		return nil, err
	}

	analysis, err := parseModelAnalysis(jsonText)
	if err != nil {
		log.WithError(err).Error("Failed to parse analysis output")
		return nil, err
	}

	source := effectiveSource(req.SourceLang, analysis.DetectedLang)

	var translation string
	if translationNeeded(source, req.UserLang) {
		out, err := s.Generator.Generate(ctx, model.Request{
			Prompt:          buildTranslationPrompt(req.Text, req.UserLang),
			Format:          model.FormatText,
			MaxOutputTokens: model.AnalysisTokens,
		})
		if err != nil {
			log.WithError(err).Error("Translation call failed")
			return nil, err
		}
		translation = strings.TrimSpace(out)
	} else {
		translationSkippedTotal.WithLabelValues(EndpointAnalyze).Inc()
		translation = req.Text
	}

	merged, filled := mergeReplies(analysis.Replies, fallback)
	for _, tone := range filled {
		fallbackRepliesTotal.WithLabelValues(langLabel(req.UserLang), tone).Inc()
	}

	log.WithFields(logrus.Fields{
		"detected_lang":    analysis.DetectedLang,
		"effective_source": source,
		"risks":            len(analysis.Risks),
		"fallback_tones":   filled,
		"duration_ms":      time.Since(startTime).Milliseconds(),
	}).Info("Analysis completed successfully")

	return &AnalysisResult{
		DetectedLang: analysis.DetectedLang,
		SourceLang:   source,
		UserLang:     req.UserLang,
		Translation:  translation,
		Summary:      analysis.Summary,
		Risks:        analysis.Risks,
		Replies:      merged,
	}, nil
}

// Translate translates text without analyzing it.
func (s *AnalysisService) Translate(ctx context.Context, req TranslateRequest) (*TranslateResult, error) {
	log := s.Logger.WithFields(logrus.Fields{
		"endpoint":    EndpointTranslate,
		"source_lang": req.SourceLang,
		"target_lang": req.UserLang,
		"text_length": len(req.Text),
	})
	log.Info("Translate request received")

	if strings.TrimSpace(req.Text) == "" {
		emptyTextTotal.WithLabelValues(EndpointTranslate).Inc()
		return &TranslateResult{DetectedLang: lang.Unknown}, nil
	}

	if err := s.Generator.Configured(); err != nil {
		log.WithError(err).Error("Model backend not configured")
		return nil, err
	}

	declared := lang.Normalize(req.SourceLang, lang.Auto)
	result := &TranslateResult{DetectedLang: declared}

	if !translationNeeded(declared, req.UserLang) {
		translationSkippedTotal.WithLabelValues(EndpointTranslate).Inc()
		log.Debug("Source and target match, returning text unchanged")
		result.Translation = req.Text
		return result, nil
	}

	startTime := time.Now()
	out, err := s.Generator.Generate(ctx, model.Request{
		Prompt:          buildStandaloneTranslationPrompt(req.Text, declared, req.UserLang),
		Format:          model.FormatText,
		MaxOutputTokens: model.TranslateTokens,
	})
	if err != nil {
		log.WithError(err).Error("Translation call failed")
		return nil, err
	}
	result.Translation = strings.TrimSpace(out)

	log.WithFields(logrus.Fields{
		"output_length": len(result.Translation),
		"duration_ms":   time.Since(startTime).Milliseconds(),
	}).Info("Translation completed successfully")

	return result, nil
}

func langLabel(code string) string {
	if lang.Supported(code) {
		return code
	}
	return "other"
}
